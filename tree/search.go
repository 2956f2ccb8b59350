package tree

import (
	"golang.org/x/text/cases"
)

// KeyValueMatch matches a key-value pair. An empty field matches anything.
type KeyValueMatch struct {
	Key   string
	Value string
}

// Criteria selects nodes. A node matches when any configured criterion
// holds; all comparisons ignore case. Zero Criteria match nothing.
type Criteria struct {
	NodeKey   string
	BareValue string
	KeyValue  *KeyValueMatch

	// SkipRaw stops KeyValue from matching raw pairs.
	SkipRaw bool
	// MatchResolved lets KeyValue match resolved pairs too.
	MatchResolved bool
}

// Search returns the first node matching c, visiting each root and then
// its descendants in pre-order. Nil when nothing matches.
func Search(roots []*Node, c Criteria) *Node {
	m := newMatcher(c)
	for _, r := range roots {
		if found := m.search(r); found != nil {
			return found
		}
	}
	return nil
}

// Search is Search over n alone.
func (n *Node) Search(c Criteria) *Node {
	return newMatcher(c).search(n)
}

// SearchAll returns every matching node in visiting order.
func SearchAll(roots []*Node, c Criteria) []*Node {
	m := newMatcher(c)
	var out []*Node
	for _, r := range roots {
		r.Walk(func(n *Node) bool {
			if m.match(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

type matcher struct {
	c       Criteria
	fold    cases.Caser
	nodeKey string
	bare    string
	kvKey   string
	kvValue string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{c: c, fold: cases.Fold()}
	m.nodeKey = m.fold.String(c.NodeKey)
	m.bare = m.fold.String(c.BareValue)
	if c.KeyValue != nil {
		m.kvKey = m.fold.String(c.KeyValue.Key)
		m.kvValue = m.fold.String(c.KeyValue.Value)
	}
	return m
}

func (m *matcher) search(n *Node) *Node {
	if m.match(n) {
		return n
	}
	for _, c := range n.children {
		if found := m.search(c); found != nil {
			return found
		}
	}
	return nil
}

// equal compares s against an already folded pattern; an empty pattern
// matches anything.
func (m *matcher) equal(pattern, s string) bool {
	return pattern == "" || m.fold.String(s) == pattern
}

func (m *matcher) match(n *Node) bool {
	if m.c.NodeKey != "" && m.equal(m.nodeKey, n.key) {
		return true
	}
	if m.c.BareValue != "" && m.matchBare(n) {
		return true
	}
	return m.c.KeyValue != nil && m.matchKeyValue(n)
}

func (m *matcher) matchBare(n *Node) bool {
	for _, v := range n.bare {
		if m.equal(m.bare, v) {
			return true
		}
	}
	return false
}

func (m *matcher) matchKeyValue(n *Node) bool {
	if !m.c.SkipRaw {
		for _, kv := range n.raw {
			if m.equal(m.kvKey, kv.Key) && m.equal(m.kvValue, kv.Value) {
				return true
			}
		}
	}
	if m.c.MatchResolved {
		for _, kv := range n.ResolvedKeyValues() {
			if m.equal(m.kvKey, kv.Key) && m.equal(m.kvValue, kv.Value) {
				return true
			}
		}
	}
	return false
}
