package api

// RemoveNulls returns a copy of a decoded JSON tree with null-valued
// mapping entries removed at every depth. Sequences are traversed but
// null elements inside them are kept; only map entries are pruned.
// Non-null falsy values (false, 0, "") are preserved, and pruning an
// already-pruned tree is a no-op.
func RemoveNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, val := range t {
			if val == nil {
				continue
			}
			out[key] = RemoveNulls(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, elem := range t {
			out = append(out, RemoveNulls(elem))
		}
		return out
	default:
		return v
	}
}
