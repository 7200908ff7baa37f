package parse

// Accessors over decoded JSON trees (map[string]any / []any).

func Obj(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func Arr(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func Str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func Bool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// Int64 reads a JSON number; encoding/json decodes numbers as float64.
func Int64(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
