package variables

// Scope is one level of variable declarations.
type Scope interface {
	Lookup(name string) (string, bool)
}

// Table is an ordered set of `@name = value` declarations. Set is
// last-write-wins; Names keeps first-declaration order. The zero value and
// a nil *Table are empty tables.
type Table struct {
	names  []string
	values map[string]string
}

func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set records a declaration. Names that are not variable references are
// ignored.
func (t *Table) Set(name, value string) {
	if !IsReference(name) {
		return
	}
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, ok := t.values[name]; !ok {
		t.names = append(t.names, name)
	}
	t.values[name] = value
}

func (t *Table) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[name]
	return v, ok
}

// Merge copies other's declarations into t, overriding existing ones.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		t.Set(name, other.values[name])
	}
}

func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Resolve resolves token against this table alone.
func (t *Table) Resolve(token string) (string, error) {
	return NewChain([]Scope{t}).Resolve(token)
}

// Aggregate merges tables in priority order: a declaration in a later
// table overrides the same name in an earlier one.
func Aggregate(tables ...*Table) *Table {
	out := NewTable()
	for _, t := range tables {
		out.Merge(t)
	}
	return out
}

// failingScope is a Scope whose lookups can fail. Chain.Resolve stops on
// the first failure and returns it wrapped in a ResolutionError.
type failingScope interface {
	lookupErr(name string) (string, bool, error)
}

// resolverScope lets an arbitrary Resolver sit at the outer end of a Chain.
type resolverScope struct {
	r Resolver
}

func (s resolverScope) Lookup(name string) (string, bool) {
	v, ok, _ := s.lookupErr(name)
	return v, ok
}

func (s resolverScope) lookupErr(name string) (string, bool, error) {
	v, err := s.r.Resolve(name)
	if err != nil {
		return "", false, err
	}
	if v == name {
		return "", false, nil
	}
	return v, true, nil
}

// TableFromPairs builds a table from alternating name/value strings. A
// trailing name without a value is ignored.
func TableFromPairs(pairs ...string) *Table {
	t := NewTable()
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i], pairs[i+1])
	}
	return t
}
