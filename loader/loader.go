// Package loader turns script files into node trees: it reads and decodes
// files through a Source, parses them, and combines the scripted variables
// of several content roots into one global scope.
package loader

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dzjyyds666/cwq/parse/clausewitz"
	"github.com/dzjyyds666/cwq/tree"
	"github.com/dzjyyds666/cwq/variables"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Loader struct {
	source   Source
	logger   *zap.Logger
	workers  int
	encoding Encoding
	global   variables.Resolver
	reporter *variables.Reporter
	maxDepth int
	progress func(path string, err error)
}

type Option func(*Loader)

func WithSource(s Source) Option {
	return func(l *Loader) { l.source = s }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithWorkers bounds the number of files parsed at once.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func WithEncoding(enc Encoding) Option {
	return func(l *Loader) { l.encoding = enc }
}

// WithGlobal sets the outermost scope of every tree the loader builds.
func WithGlobal(r variables.Resolver) Option {
	return func(l *Loader) { l.global = r }
}

func WithReporter(r *variables.Reporter) Option {
	return func(l *Loader) { l.reporter = r }
}

// WithMaxDepth bounds variable chains in every scope the loader builds.
func WithMaxDepth(n int) Option {
	return func(l *Loader) { l.maxDepth = n }
}

// WithProgress registers a callback invoked once per file of a batch,
// possibly from several goroutines.
func WithProgress(fn func(path string, err error)) Option {
	return func(l *Loader) { l.progress = fn }
}

func New(opts ...Option) *Loader {
	l := &Loader{
		source:   OSSource{},
		workers:  runtime.NumCPU(),
		encoding: encodings.Auto,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.reporter == nil {
		l.reporter = variables.NewReporter(l.logger)
	}
	return l
}

func (l *Loader) Reporter() *variables.Reporter { return l.reporter }

// SetGlobal replaces the outermost scope used for trees built afterwards.
func (l *Loader) SetGlobal(r variables.Resolver) { l.global = r }

// ParseText parses already decoded text into a tree rooted at name.
func (l *Loader) ParseText(name, text string) (*tree.Node, error) {
	cfg, err := clausewitz.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tree.FromConfig(name, cfg, l.global, l.adaptOptions()...), nil
}

func (l *Loader) adaptOptions() []tree.AdaptOption {
	opts := []tree.AdaptOption{tree.WithReporter(l.reporter)}
	if l.maxDepth > 0 {
		opts = append(opts, tree.WithMaxDepth(l.maxDepth))
	}
	return opts
}

func (l *Loader) chainOptions() []variables.Option {
	opts := []variables.Option{variables.WithReporter(l.reporter)}
	if l.maxDepth > 0 {
		opts = append(opts, variables.WithMaxDepth(l.maxDepth))
	}
	return opts
}

// ParseSource decodes and parses raw file contents.
func (l *Loader) ParseSource(name string, data []byte) (*tree.Node, error) {
	text, err := Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return l.ParseText(name, text)
}

// ParseOne reads and parses a single file. The root node is keyed by path.
func (l *Loader) ParseOne(path string) (*tree.Node, error) {
	data, err := l.source.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return l.ParseSource(path, data)
}

// Failure records a file skipped by a batch.
type Failure struct {
	Path string
	Err  error
}

// BatchResult holds the trees of a batch keyed by path. Paths lists the
// parsed paths in input order.
type BatchResult struct {
	Nodes    map[string]*tree.Node
	Paths    []string
	Failures []Failure
}

// Roots returns the parsed trees in input order.
func (r *BatchResult) Roots() []*tree.Node {
	out := make([]*tree.Node, 0, len(r.Paths))
	for _, p := range r.Paths {
		out = append(out, r.Nodes[p])
	}
	return out
}

// ParseMany parses paths concurrently. Without continueOnFailure the first
// failure cancels the batch and is returned with no result. With it, failed
// files are logged, listed in Failures and left out of Nodes.
func (l *Loader) ParseMany(ctx context.Context, paths []string, continueOnFailure bool) (*BatchResult, error) {
	nodes := make([]*tree.Node, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := l.ParseOne(path)
			if l.progress != nil {
				l.progress(path, err)
			}
			if err != nil {
				if !continueOnFailure {
					return err
				}
				errs[i] = err
				return nil
			}
			nodes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.Error("batch aborted", zap.Int("files", len(paths)), zap.Error(err))
		return nil, err
	}

	res := &BatchResult{Nodes: make(map[string]*tree.Node, len(paths))}
	for i, path := range paths {
		if errs[i] != nil {
			l.logger.Warn("skipping file", zap.String("path", path), zap.Error(errs[i]))
			res.Failures = append(res.Failures, Failure{Path: path, Err: errs[i]})
			continue
		}
		if _, dup := res.Nodes[path]; !dup {
			res.Paths = append(res.Paths, path)
		}
		res.Nodes[path] = nodes[i]
	}
	l.logger.Debug("batch parsed",
		zap.Int("files", len(paths)),
		zap.Int("parsed", len(res.Paths)),
		zap.Int("failed", len(res.Failures)))
	return res, nil
}
