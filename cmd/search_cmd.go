package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dzjyyds666/cwq/loader"
	"github.com/dzjyyds666/cwq/tree"
	"github.com/spf13/cobra"
)

type SearchParams struct {
	Key      string
	Bare     string
	KeyValue string // key=value, either side may be empty
	Resolved bool
	SkipRaw  bool
	All      bool
	Continue bool
}

var searchParams = &SearchParams{}

var searchCmd = &cobra.Command{
	Use:   "search [paths...]",
	Short: "find clauses by key, bare value or key-value pair",
	Args:  cobra.MinimumNArgs(1),
	RunE:  searchRun,
}

func init() {
	searchCmd.Flags().StringVarP(&searchParams.Key, "key", "k", "", "clause key")
	searchCmd.Flags().StringVarP(&searchParams.Bare, "bare", "b", "", "bare value inside the clause")
	searchCmd.Flags().StringVar(&searchParams.KeyValue, "kv", "", "key=value pair inside the clause")
	searchCmd.Flags().BoolVarP(&searchParams.Resolved, "resolved", "r", false, "match resolved values too")
	searchCmd.Flags().BoolVar(&searchParams.SkipRaw, "skip-raw", false, "do not match raw values")
	searchCmd.Flags().BoolVarP(&searchParams.All, "all", "a", false, "print every match instead of the first")
	searchCmd.Flags().BoolVar(&searchParams.Continue, "continue", false, "skip files that fail to parse")
}

func (p *SearchParams) criteria() (tree.Criteria, error) {
	c := tree.Criteria{
		NodeKey:       p.Key,
		BareValue:     p.Bare,
		SkipRaw:       p.SkipRaw,
		MatchResolved: p.Resolved,
	}
	if p.KeyValue != "" {
		k, v, ok := strings.Cut(p.KeyValue, "=")
		if !ok {
			return c, fmt.Errorf("--kv wants key=value, got %q", p.KeyValue)
		}
		c.KeyValue = &tree.KeyValueMatch{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)}
	}
	if c.NodeKey == "" && c.BareValue == "" && c.KeyValue == nil {
		return c, fmt.Errorf("one of --key, --bare or --kv is required")
	}
	return c, nil
}

func searchRun(cmd *cobra.Command, args []string) error {
	criteria, err := searchParams.criteria()
	if err != nil {
		return err
	}
	files, err := collectInputs(args)
	if err != nil {
		return err
	}
	global, err := loadGlobal(cmd.Context(), cfg.Variables.Roots, cfg.Variables.OverrideOrder)
	if err != nil {
		return err
	}
	l, err := newLoader(loader.WithGlobal(global))
	if err != nil {
		return err
	}
	res, err := l.ParseMany(cmd.Context(), files, continueOnFailure(cmd, searchParams.Continue))
	if err != nil {
		return err
	}
	reportFailures(cmd.ErrOrStderr(), res.Failures)

	var matches []*tree.Node
	if searchParams.All {
		matches = tree.SearchAll(res.Roots(), criteria)
	} else if n := tree.Search(res.Roots(), criteria); n != nil {
		matches = append(matches, n)
	}
	if len(matches) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), warnColor.Sprint("no match"))
		return nil
	}
	for _, n := range matches {
		printMatch(cmd.OutOrStdout(), n)
	}
	return nil
}

func printMatch(w io.Writer, n *tree.Node) {
	path := n.Path()
	fmt.Fprintf(w, "%s: %s\n", pathColor.Sprint(path[0]), strings.Join(path[1:], "/"))
	for _, kv := range n.ResolvedKeyValues() {
		value := kv.Value
		if kv.Raw != kv.Value {
			value = fmt.Sprintf("%s (%s)", kv.Value, kv.Raw)
		}
		fmt.Fprintf(w, "  %s %s %s\n", keyColor.Sprint(kv.Key), kv.Operator, valueColor.Sprint(value))
	}
	if bare := n.BareValues(); len(bare) > 0 {
		fmt.Fprintf(w, "  %s\n", valueColor.Sprint(strings.Join(bare, " ")))
	}
}
