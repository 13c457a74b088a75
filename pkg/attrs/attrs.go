// Package attrs reads values back out of flat slog-style key/value slices.
package attrs

// Lookup returns the first value paired with key in kv, formatted as
// [key1, value1, key2, value2, ...], when it has type T.
func Lookup[T any](kv []any, key string) (T, bool) {
	var zero T
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); !ok || k != key {
			continue
		}
		v, ok := kv[i+1].(T)
		return v, ok
	}
	return zero, false
}

// ExtractString returns the string paired with key, or "".
func ExtractString(kv []any, key string) string {
	v, _ := Lookup[string](kv, key)
	return v
}
