// Package tree is the public data model of parsed script files: an ordered
// tree of clauses whose key/value pairs are resolved lazily through a
// swappable scripted-variable scope.
package tree

import (
	"slices"
	"strings"
	"sync"

	"github.com/dzjyyds666/cwq/parse/clausewitz"
	"github.com/dzjyyds666/cwq/variables"
)

// KeyValue is an unresolved `key op value` pair. A quoted value is a
// literal and never resolves as a scripted variable.
type KeyValue struct {
	Key      string
	Operator clausewitz.Operator
	Value    string
	Quoted   bool
	Parent   *Node
}

// ResolvedKeyValue is a KeyValue seen through the owning node's resolver.
// When resolution fails Value equals Raw and Err is set.
type ResolvedKeyValue struct {
	Key      string
	Operator clausewitz.Operator
	Raw      string
	Value    string
	Err      error
	Parent   *Node
}

// Node is a clause. Children are owned by the node; Parent is a back link
// maintained by every method that assigns children, and a node has at most
// one parent. Lookups return the
// first match in source order.
//
// Structure mutation is not safe for concurrent use. Readers may call
// ResolvedKeyValues concurrently with each other.
type Node struct {
	key      string
	parent   *Node
	children []*Node
	raw      []KeyValue
	bare     []string
	resolver variables.Resolver

	mu         sync.Mutex
	resolved   []ResolvedKeyValue
	cacheValid bool
}

func New(key string) *Node {
	return &Node{key: key, resolver: variables.Passthrough}
}

func (n *Node) Key() string     { return n.key }
func (n *Node) Parent() *Node   { return n.parent }
func (n *Node) IsRoot() bool    { return n.parent == nil }
func (n *Node) ChildCount() int { return len(n.children) }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// SetChildren replaces the children and links each one back to n. Dropped
// children become roots; a child owned by another node is moved.
func (n *Node) SetChildren(children []*Node) {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = make([]*Node, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		c.detach()
		c.parent = n
		n.children = append(n.children, c)
	}
}

// AppendChild adds c as the last child, moving it from its current parent.
func (n *Node) AppendChild(c *Node) {
	c.detach()
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

func (n *Node) RawKeyValues() []KeyValue {
	return append([]KeyValue(nil), n.raw...)
}

// SetRawKeyValues replaces the pairs, re-owning them by n.
func (n *Node) SetRawKeyValues(kvs []KeyValue) {
	n.raw = make([]KeyValue, len(kvs))
	for i, kv := range kvs {
		kv.Parent = n
		n.raw[i] = kv
	}
	n.invalidate()
}

func (n *Node) AddKeyValue(key string, op clausewitz.Operator, value string) {
	n.raw = append(n.raw, KeyValue{Key: key, Operator: op, Value: value, Parent: n})
	n.invalidate()
}

func (n *Node) BareValues() []string {
	return append([]string(nil), n.bare...)
}

func (n *Node) SetBareValues(values []string) {
	n.bare = append([]string(nil), values...)
}

func (n *Node) AddBareValue(v string) {
	n.bare = append(n.bare, v)
}

func (n *Node) Resolver() variables.Resolver { return n.resolver }

// SetResolver swaps the node's scope. Resolved key-values are recomputed
// on next access. A nil resolver resolves nothing.
func (n *Node) SetResolver(r variables.Resolver) {
	if r == nil {
		r = variables.Passthrough
	}
	n.resolver = r
	n.invalidate()
}

func (n *Node) invalidate() {
	n.mu.Lock()
	n.cacheValid = false
	n.resolved = nil
	n.mu.Unlock()
}

// resolvedStale reports whether the memoized resolved view must be rebuilt.
func (n *Node) resolvedStale() bool {
	return !n.cacheValid
}

// ResolvedKeyValues resolves every raw pair through the current resolver.
// The result is memoized until the resolver or the raw pairs change.
func (n *Node) ResolvedKeyValues() []ResolvedKeyValue {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.resolvedStale() {
		n.resolved = make([]ResolvedKeyValue, len(n.raw))
		for i, kv := range n.raw {
			n.resolved[i] = n.resolveKeyValue(kv)
		}
		n.cacheValid = true
	}
	return append([]ResolvedKeyValue(nil), n.resolved...)
}

func (n *Node) resolveKeyValue(kv KeyValue) ResolvedKeyValue {
	var err error
	v := kv.Value
	if !kv.Quoted {
		v, err = variables.Lookup(n.resolver, kv.Value)
	}
	return ResolvedKeyValue{
		Key:      kv.Key,
		Operator: kv.Operator,
		Raw:      kv.Value,
		Value:    v,
		Err:      err,
		Parent:   kv.Parent,
	}
}

// Resolve resolves a single token in this node's scope, keeping the token
// when resolution fails.
func (n *Node) Resolve(token string) string {
	v, _ := variables.Lookup(n.resolver, token)
	return v
}

// =========================
// Queries
// =========================

func (n *Node) GetNode(key string) *Node {
	for _, c := range n.children {
		if strings.EqualFold(c.key, key) {
			return c
		}
	}
	return nil
}

func (n *Node) GetNodes(key string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if strings.EqualFold(c.key, key) {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) GetKeyValue(key string) (KeyValue, bool) {
	for _, kv := range n.raw {
		if strings.EqualFold(kv.Key, key) {
			return kv, true
		}
	}
	return KeyValue{}, false
}

func (n *Node) GetKeyValues(key string) []KeyValue {
	var out []KeyValue
	for _, kv := range n.raw {
		if strings.EqualFold(kv.Key, key) {
			out = append(out, kv)
		}
	}
	return out
}

func (n *Node) GetResolvedKeyValue(key string) (ResolvedKeyValue, bool) {
	for _, kv := range n.ResolvedKeyValues() {
		if strings.EqualFold(kv.Key, key) {
			return kv, true
		}
	}
	return ResolvedKeyValue{}, false
}

// Find follows a path of child keys, taking the first match at each level.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, p := range path {
		if len(p) == 0 {
			continue
		}
		cur = cur.GetNode(p)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Path lists the keys from the root down to n.
func (n *Node) Path() []string {
	var keys []string
	for cur := n; cur != nil; cur = cur.parent {
		keys = append(keys, cur.key)
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// Walk visits n and its descendants in pre-order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
