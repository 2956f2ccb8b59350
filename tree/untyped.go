package tree

// ToUntyped converts a node into plain Go data ready for encoding:
//
//	{"key": ..., "values": [{"key","op","value"[,"raw"]}...], "bare": [...], "children": [...]}
//
// With resolved set, values carry the resolved text and the raw token when
// they differ. Empty buckets are omitted.
func ToUntyped(n *Node, resolved bool) map[string]any {
	out := map[string]any{"key": n.key}

	if len(n.raw) > 0 {
		values := make([]any, 0, len(n.raw))
		if resolved {
			for _, kv := range n.ResolvedKeyValues() {
				entry := map[string]any{"key": kv.Key, "op": kv.Operator.String(), "value": kv.Value}
				if kv.Raw != kv.Value {
					entry["raw"] = kv.Raw
				}
				if kv.Err != nil {
					entry["error"] = kv.Err.Error()
				}
				values = append(values, entry)
			}
		} else {
			for _, kv := range n.raw {
				values = append(values, map[string]any{"key": kv.Key, "op": kv.Operator.String(), "value": kv.Value})
			}
		}
		out["values"] = values
	}

	if len(n.bare) > 0 {
		out["bare"] = n.BareValues()
	}

	if len(n.children) > 0 {
		children := make([]any, 0, len(n.children))
		for _, c := range n.children {
			children = append(children, ToUntyped(c, resolved))
		}
		out["children"] = children
	}
	return out
}
