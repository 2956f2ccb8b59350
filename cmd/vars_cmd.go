package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/dzjyyds666/cwq/config"
	"github.com/spf13/cobra"
)

type VarsParams struct {
	Game  []string
	Mods  []string
	Order string
}

var varsParams = &VarsParams{}

var varsCmd = &cobra.Command{
	Use:   "vars [@name...]",
	Short: "aggregate scripted variables across game and mod roots",
	Long: `Aggregate the top-level scripted variables of the game and every mod.
Without --game or --mod the roots of the configuration file are used.
With names, only those variables are resolved and printed.`,
	RunE: varsRun,
}

func init() {
	varsCmd.Flags().StringSliceVar(&varsParams.Game, "game", nil, "game scripted-variable directory")
	varsCmd.Flags().StringSliceVar(&varsParams.Mods, "mod", nil, "mod scripted-variable directory, in load order")
	varsCmd.Flags().StringVar(&varsParams.Order, "order", "", "override order: game-first or game-last")
}

func (p *VarsParams) roots() []config.Root {
	if len(p.Game) == 0 && len(p.Mods) == 0 {
		return cfg.Variables.Roots
	}
	var roots []config.Root
	if len(p.Game) > 0 {
		roots = append(roots, config.Root{Name: "game", Game: true, Paths: p.Game})
	}
	for _, m := range p.Mods {
		roots = append(roots, config.Root{Name: filepath.Clean(m), Paths: []string{m}})
	}
	return roots
}

func varsRun(cmd *cobra.Command, args []string) error {
	order := varsParams.Order
	if order == "" {
		order = cfg.Variables.OverrideOrder
	}
	roots := varsParams.roots()
	if len(roots) == 0 {
		return fmt.Errorf("no scripted-variable roots: pass --game/--mod or configure variables.roots")
	}

	chain, err := loadChain(cmd.Context(), roots, order)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = chain.Local().Names()
	}
	w := cmd.OutOrStdout()
	for _, name := range names {
		raw, ok := chain.Local().Lookup(name)
		if !ok {
			fmt.Fprintf(w, "%s %s\n", keyColor.Sprint(name), warnColor.Sprint("undefined"))
			continue
		}
		resolved, err := chain.Resolve(name)
		switch {
		case err != nil:
			fmt.Fprintf(w, "%s = %s %s\n", keyColor.Sprint(name), raw, errorColor.Sprint(err))
		case resolved != raw:
			fmt.Fprintf(w, "%s = %s -> %s\n", keyColor.Sprint(name), raw, valueColor.Sprint(resolved))
		default:
			fmt.Fprintf(w, "%s = %s\n", keyColor.Sprint(name), valueColor.Sprint(raw))
		}
	}
	return nil
}
