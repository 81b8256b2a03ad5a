package util

import "slices"

// DeepMerge merges maps left to right into a fresh map. Later maps win;
// values that are map[string]any on both sides are merged recursively.
// None of the inputs is mutated.
func DeepMerge(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			src, srcIsMap := v.(map[string]any)
			if !srcIsMap {
				out[k] = v
				continue
			}
			if dst, ok := out[k].(map[string]any); ok {
				out[k] = DeepMerge(dst, src)
			} else {
				out[k] = DeepMerge(src)
			}
		}
	}
	return out
}

// Merge shallow-merges maps left to right into a fresh map. Later maps win.
// Returns nil when every input is nil.
func Merge[K comparable, V any](maps ...map[K]V) map[K]V {
	var out map[K]V
	for _, m := range maps {
		if m == nil {
			continue
		}
		if out == nil {
			out = make(map[K]V, len(m))
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
