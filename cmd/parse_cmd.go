package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dzjyyds666/cwq/loader"
	"github.com/dzjyyds666/cwq/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type ParseParams struct {
	Find       string   `json:"find"`   // slash separated clause path
	Input      []string `json:"input"`  // files or directories
	Output     string   `json:"output"` // output file, stdout when empty
	Resolved   bool     `json:"resolved"`
	Continue   bool     `json:"continue"`
	NoProgress bool     `json:"no_progress"`
}

var parseParams = &ParseParams{}

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "parse script files and print their trees as JSON",
	RunE:  parseRun,
}

func init() {
	parseCmd.Flags().StringVarP(&parseParams.Find, "find", "f", "", "clause path to print, e.g. country/army")
	parseCmd.Flags().StringSliceVarP(&parseParams.Input, "input", "i", nil, "input file or directory")
	parseCmd.Flags().StringVarP(&parseParams.Output, "output", "o", "", "output path")
	parseCmd.Flags().BoolVarP(&parseParams.Resolved, "resolved", "r", false, "print values with scripted variables resolved")
	parseCmd.Flags().BoolVar(&parseParams.Continue, "continue", false, "skip files that fail to parse")
	parseCmd.Flags().BoolVar(&parseParams.NoProgress, "no-progress", false, "hide the progress bar")
}

func continueOnFailure(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("continue") {
		return flag
	}
	return cfg.ContinueOnFailure
}

func parseRun(cmd *cobra.Command, args []string) error {
	files, err := collectInputs(append(args, parseParams.Input...))
	if err != nil {
		return err
	}

	global, err := loadGlobal(cmd.Context(), cfg.Variables.Roots, cfg.Variables.OverrideOrder)
	if err != nil {
		return err
	}

	opts := []loader.Option{loader.WithGlobal(global)}
	if !parseParams.NoProgress {
		bar := newProgressBar(cmd.ErrOrStderr(), len(files), "parsing")
		defer bar.Finish()
		opts = append(opts, loader.WithProgress(func(string, error) { bar.Add(1) }))
	}
	l, err := newLoader(opts...)
	if err != nil {
		return err
	}

	res, err := l.ParseMany(cmd.Context(), files, continueOnFailure(cmd, parseParams.Continue))
	if err != nil {
		return err
	}
	reportFailures(cmd.ErrOrStderr(), res.Failures)

	out := make(map[string]any, len(res.Paths))
	for _, path := range res.Paths {
		node := res.Nodes[path]
		if parseParams.Find != "" {
			node = node.Find(strings.Split(parseParams.Find, "/")...)
			if node == nil {
				logger.Debug("path not found", zap.String("file", path), zap.String("find", parseParams.Find))
				continue
			}
		}
		out[path] = tree.ToUntyped(node, parseParams.Resolved)
	}

	d, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if parseParams.Output != "" {
		return os.WriteFile(parseParams.Output, append(d, '\n'), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(d))
	return nil
}
