package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dzjyyds666/cwq/config"
	"github.com/dzjyyds666/cwq/loader"
	"github.com/dzjyyds666/cwq/pkg"
	"github.com/dzjyyds666/cwq/variables"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	pathColor  = color.New(color.FgBlue, color.Bold)
	keyColor   = color.New(color.FgCyan)
	valueColor = color.New(color.FgGreen)
)

func newLoader(opts ...loader.Option) (*loader.Loader, error) {
	enc, err := loader.ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	base := []loader.Option{
		loader.WithLogger(logger),
		loader.WithWorkers(cfg.Workers),
		loader.WithEncoding(enc),
		loader.WithMaxDepth(cfg.MaxDepth),
		loader.WithReporter(variables.NewReporter(logger)),
	}
	return loader.New(append(base, opts...)...), nil
}

// scopeRoots expands the directories of configured roots into files.
func scopeRoots(roots []config.Root) ([]loader.ScopeRoot, error) {
	out := make([]loader.ScopeRoot, 0, len(roots))
	for _, r := range roots {
		files, err := pkg.CollectFiles(r.Paths, cfg.Extensions)
		if err != nil {
			return nil, fmt.Errorf("scope root %s: %w", r.Name, err)
		}
		out = append(out, loader.ScopeRoot{Name: r.Name, Game: r.Game, Files: files})
	}
	return out, nil
}

// loadGlobal builds the global scope from the configured scripted-variable
// roots. Nil when no roots are configured.
func loadGlobal(ctx context.Context, roots []config.Root, order string) (variables.Resolver, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	chain, err := loadChain(ctx, roots, order)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

func loadChain(ctx context.Context, roots []config.Root, order string) (*variables.Chain, error) {
	sr, err := scopeRoots(roots)
	if err != nil {
		return nil, err
	}
	o, err := loader.ParseOverrideOrder(order)
	if err != nil {
		return nil, err
	}
	l, err := newLoader()
	if err != nil {
		return nil, err
	}
	return l.LoadGlobal(ctx, sr, o, cfg.ContinueOnFailure)
}

// collectInputs checks every input exists and expands directories.
func collectInputs(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input file path")
	}
	for _, in := range inputs {
		exist, err := pkg.CheckFileExist(in)
		if err != nil {
			return nil, fmt.Errorf("check file exist error: %w", err)
		}
		if !exist {
			return nil, fmt.Errorf("input file not exist: %s", in)
		}
	}
	return pkg.CollectFiles(inputs, cfg.Extensions)
}

func newProgressBar(w io.Writer, total int, desc string) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func reportFailures(w io.Writer, failures []loader.Failure) {
	for _, f := range failures {
		fmt.Fprintf(w, "%s %s: %v\n", warnColor.Sprint("skipped"), f.Path, f.Err)
	}
}
