package loader

import (
	"context"
	"fmt"

	"github.com/dzjyyds666/cwq/tree"
	"github.com/dzjyyds666/cwq/variables"
	"go.uber.org/zap"
)

// ScopeRoot is one content source contributing scripted-variable files:
// the base game or a mod. Files are already discovered by the caller.
type ScopeRoot struct {
	Name  string
	Game  bool
	Files []string
}

// OverrideOrder decides whether mods override the game or the reverse.
type OverrideOrder int

const (
	// GameFirst merges the game before mods, so mods win.
	GameFirst OverrideOrder = iota
	// GameLast merges the game after mods, so the game wins.
	GameLast
)

func (o OverrideOrder) String() string {
	if o == GameLast {
		return "game-last"
	}
	return "game-first"
}

func ParseOverrideOrder(s string) (OverrideOrder, error) {
	switch s {
	case "", "game-first":
		return GameFirst, nil
	case "game-last":
		return GameLast, nil
	default:
		return GameFirst, fmt.Errorf("unknown override order %q", s)
	}
}

// OrderRoots drops repeated root names, keeping the first, and moves game
// roots to the front or back. The relative order of the rest is kept.
func OrderRoots(roots []ScopeRoot, order OverrideOrder) []ScopeRoot {
	seen := make(map[string]struct{}, len(roots))
	var game, mods []ScopeRoot
	for _, r := range roots {
		if _, dup := seen[r.Name]; dup {
			continue
		}
		seen[r.Name] = struct{}{}
		if r.Game {
			game = append(game, r)
		} else {
			mods = append(mods, r)
		}
	}
	if order == GameLast {
		return append(mods, game...)
	}
	return append(game, mods...)
}

// LoadVariables parses the variable files of every root and merges their
// top-level declarations into one table, later roots overriding earlier
// ones. Within a root, files merge in the given order.
func (l *Loader) LoadVariables(ctx context.Context, roots []ScopeRoot, order OverrideOrder, continueOnFailure bool) (*variables.Table, error) {
	out := variables.NewTable()
	for _, root := range OrderRoots(roots, order) {
		batch, err := l.ParseMany(ctx, root.Files, continueOnFailure)
		if err != nil {
			return nil, fmt.Errorf("scope root %s: %w", root.Name, err)
		}
		for _, n := range batch.Roots() {
			out.Merge(n.Declarations())
		}
		l.logger.Debug("scope root merged",
			zap.String("root", root.Name),
			zap.Int("files", len(batch.Paths)),
			zap.Int("variables", out.Len()))
	}
	return out, nil
}

// LoadGlobal is LoadVariables installed as the loader's outermost scope.
func (l *Loader) LoadGlobal(ctx context.Context, roots []ScopeRoot, order OverrideOrder, continueOnFailure bool) (*variables.Chain, error) {
	table, err := l.LoadVariables(ctx, roots, order, continueOnFailure)
	if err != nil {
		return nil, err
	}
	global := variables.NewChain([]variables.Scope{table}, l.chainOptions()...)
	l.SetGlobal(global)
	return global, nil
}

// Rescope points existing trees at the loader's current global scope.
func (l *Loader) Rescope(roots ...*tree.Node) {
	for _, r := range roots {
		tree.Rescope(r, l.global, l.adaptOptions()...)
	}
}
