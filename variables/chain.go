package variables

// DefaultMaxDepth bounds the number of substitutions in one resolution.
const DefaultMaxDepth = 64

// Chain resolves against an ordered list of scopes, innermost first. A
// Chain is immutable; Push and WithFallback return new chains.
type Chain struct {
	scopes   []Scope
	maxDepth int
	reporter *Reporter
}

type Option func(*Chain)

func WithMaxDepth(n int) Option {
	return func(c *Chain) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

func WithReporter(r *Reporter) Option {
	return func(c *Chain) { c.reporter = r }
}

func NewChain(scopes []Scope, opts ...Option) *Chain {
	c := &Chain{maxDepth: DefaultMaxDepth}
	for _, s := range scopes {
		if s != nil {
			c.scopes = append(c.scopes, s)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extend puts local in front of fallback. A Chain fallback is flattened and
// a Table fallback becomes the outermost scope, so the result stays one
// ordered list. Any other Resolver is consulted last and its errors are
// passed up.
func Extend(fallback Resolver, local *Table, opts ...Option) *Chain {
	var c *Chain
	switch f := fallback.(type) {
	case *Chain:
		c = f.Push(local)
	case nil, passthrough:
		c = NewChain([]Scope{local})
	case *Table:
		c = NewChain([]Scope{local, f})
	default:
		c = NewChain([]Scope{local, resolverScope{r: f}})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push returns a chain with t as the new innermost scope.
func (c *Chain) Push(t *Table) *Chain {
	scopes := make([]Scope, 0, len(c.scopes)+1)
	scopes = append(scopes, t)
	scopes = append(scopes, c.scopes...)
	return &Chain{scopes: scopes, maxDepth: c.maxDepth, reporter: c.reporter}
}

// WithFallback returns a chain that consults outer after every scope of c.
func (c *Chain) WithFallback(outer *Chain) *Chain {
	scopes := make([]Scope, 0, len(c.scopes)+len(outer.scopes))
	scopes = append(scopes, c.scopes...)
	scopes = append(scopes, outer.scopes...)
	return &Chain{scopes: scopes, maxDepth: c.maxDepth, reporter: c.reporter}
}

// Local is the innermost table, or nil when the innermost scope is not a
// Table.
func (c *Chain) Local() *Table {
	if len(c.scopes) == 0 {
		return nil
	}
	t, _ := c.scopes[0].(*Table)
	return t
}

func (c *Chain) Depth() int { return len(c.scopes) }

func (c *Chain) Reporter() *Reporter { return c.reporter }

func (c *Chain) lookupFrom(name string, from int) (int, string, bool, error) {
	for i := from; i < len(c.scopes); i++ {
		if fs, ok := c.scopes[i].(failingScope); ok {
			v, found, err := fs.lookupErr(name)
			if err != nil || found {
				return i, v, found, err
			}
			continue
		}
		if v, ok := c.scopes[i].Lookup(name); ok {
			return i, v, true, nil
		}
	}
	return 0, "", false, nil
}

type visit struct {
	scope int
	name  string
}

// Resolve substitutes token by the innermost declaration of that name. A
// substituted value that is itself a reference is resolved again, starting
// at the scope that declared it, so an inner shadow never changes what an
// outer declaration means. Unknown references are returned as reached. A
// failing outer resolver aborts with its error as the cause.
func (c *Chain) Resolve(token string) (string, error) {
	if !IsReference(token) {
		return token, nil
	}

	seen := make(map[visit]struct{})
	path := []string{token}
	cur, from := token, 0
	for steps := 0; IsReference(cur); steps++ {
		idx, v, ok, err := c.lookupFrom(cur, from)
		if err != nil {
			return token, &ResolutionError{Token: token, Chain: path, Err: err}
		}
		if !ok {
			break
		}
		key := visit{scope: idx, name: cur}
		if _, dup := seen[key]; dup {
			return token, &ResolutionError{Token: token, Chain: path, Err: ErrCycle}
		}
		if steps >= c.maxDepth {
			return token, &ResolutionError{Token: token, Chain: path, Err: ErrDepthExceeded}
		}
		seen[key] = struct{}{}
		path = append(path, v)
		cur, from = v, idx
	}
	return cur, nil
}
