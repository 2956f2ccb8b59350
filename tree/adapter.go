package tree

import (
	"github.com/dzjyyds666/cwq/parse/clausewitz"
	"github.com/dzjyyds666/cwq/variables"
)

// Statement is one entry of a clause body handed to FromStatements. It is
// implemented by Leaf, LeafValue, Clause and Comment.
type Statement interface {
	isStatement()
}

// Leaf is a keyed scalar: `key op value`. Quoted marks a string literal.
type Leaf struct {
	Key      string
	Operator clausewitz.Operator
	Value    string
	Quoted   bool
}

// LeafValue is a bare scalar inside a clause.
type LeafValue struct {
	Value string
}

// Clause is a keyed or unnamed bracketed body.
type Clause struct {
	Key        string
	Statements []Statement
}

// Comment is kept as a bare value of the enclosing node.
type Comment struct {
	Text string
}

func (Leaf) isStatement()      {}
func (LeafValue) isStatement() {}
func (Clause) isStatement()    {}
func (Comment) isStatement()   {}

type adaptOptions struct {
	chainOpts []variables.Option
}

type AdaptOption func(*adaptOptions)

// WithReporter attaches r to every scope chain the adapter builds.
func WithReporter(r *variables.Reporter) AdaptOption {
	return func(o *adaptOptions) {
		o.chainOpts = append(o.chainOpts, variables.WithReporter(r))
	}
}

func WithMaxDepth(n int) AdaptOption {
	return func(o *adaptOptions) {
		o.chainOpts = append(o.chainOpts, variables.WithMaxDepth(n))
	}
}

func newAdaptOptions(opts []AdaptOption) *adaptOptions {
	o := &adaptOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FromConfig builds the node tree of a parse result. Keyed maps and arrays
// become child nodes, keyed scalars raw key-values, bare scalars bare
// values. Every node resolves through its own `@` declarations pushed in
// front of its parent's scope; the root's parent scope is fallback.
func FromConfig(rootKey string, cfg *clausewitz.Config, fallback variables.Resolver, opts ...AdaptOption) *Node {
	var items []clausewitz.Assignment
	if cfg != nil {
		items = cfg.Assignments
	}
	return FromStatements(rootKey, statementsOf(items), fallback, opts...)
}

// FromStatements builds a tree from an already parsed clause stream.
func FromStatements(rootKey string, stmts []Statement, fallback variables.Resolver, opts ...AdaptOption) *Node {
	o := newAdaptOptions(opts)
	root := New(rootKey)
	o.fill(root, stmts, fallback)
	return root
}

type pendingClause struct {
	node  *Node
	stmts []Statement
}

// fill partitions stmts into n first, so n's scope is complete before any
// child chain is derived from it.
func (o *adaptOptions) fill(n *Node, stmts []Statement, outer variables.Resolver) {
	var pending []pendingClause
	var raw []KeyValue
	for _, st := range stmts {
		switch s := st.(type) {
		case Leaf:
			raw = append(raw, KeyValue{Key: s.Key, Operator: s.Operator, Value: s.Value, Quoted: s.Quoted})
		case LeafValue:
			n.AddBareValue(s.Value)
		case Comment:
			n.AddBareValue(s.Text)
		case Clause:
			child := New(s.Key)
			n.AppendChild(child)
			pending = append(pending, pendingClause{node: child, stmts: s.Statements})
		}
	}
	n.SetRawKeyValues(raw)
	n.SetResolver(variables.Extend(outer, declarations(raw), o.chainOpts...))

	for _, p := range pending {
		o.fill(p.node, p.stmts, n.resolver)
	}
}

// Rescope rebuilds the scope chain of every node below root over a new
// outer resolver, keeping each node's own declarations.
func Rescope(root *Node, fallback variables.Resolver, opts ...AdaptOption) {
	o := newAdaptOptions(opts)
	o.rescope(root, fallback)
}

func (o *adaptOptions) rescope(n *Node, outer variables.Resolver) {
	n.SetResolver(variables.Extend(outer, declarations(n.raw), o.chainOpts...))
	for _, c := range n.children {
		o.rescope(c, n.resolver)
	}
}

// Declarations returns the scripted variables declared directly in n.
func (n *Node) Declarations() *variables.Table {
	return declarations(n.raw)
}

func declarations(kvs []KeyValue) *variables.Table {
	t := variables.NewTable()
	for _, kv := range kvs {
		if kv.Operator == clausewitz.OpEq {
			t.Set(kv.Key, kv.Value)
		}
	}
	return t
}

func statementsOf(items []clausewitz.Assignment) []Statement {
	out := make([]Statement, 0, len(items))
	for _, a := range items {
		out = append(out, statementOf(a.Key(), a.Field != nil, a.Op, a.Value))
	}
	return out
}

func statementOf(key string, keyed bool, op clausewitz.Operator, v clausewitz.Value) Statement {
	switch v := v.(type) {
	case *clausewitz.Map:
		return Clause{Key: key, Statements: statementsOf(v.Items)}
	case *clausewitz.Array:
		body := make([]Statement, 0, len(v.Elems))
		for _, e := range v.Elems {
			body = append(body, statementOf("", false, clausewitz.OpNone, e))
		}
		return Clause{Key: key, Statements: body}
	default:
		if !keyed {
			return LeafValue{Value: v.Text()}
		}
		s, _ := v.(clausewitz.String)
		return Leaf{Key: key, Operator: op, Value: v.Text(), Quoted: s.Quoted}
	}
}
