package nativeengine

import "sort"

// sortedStringKeys returns m's keys in ascending order, used wherever a map
// iteration needs a deterministic order (labels/properties sidecar,
// dump output).
func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedInt64Keys returns the node ids of m in ascending order.
func sortedInt64Keys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
