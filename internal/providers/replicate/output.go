package replicate

import (
	"encoding/json"
	"sort"
	"strings"
)

// Provider output shapes vary by model. Resolution is an ordered list of
// typed matchers; the first match wins and the order must not change, since
// a response can satisfy several rules at once.
type outputMatcher func(v any) (string, bool)

var outputMatchers = []outputMatcher{
	matchHTTPString,
	matchFirstArrayString,
	matchURLField,
	matchOutputArray,
	matchOutputString,
}

// ResolveOutputURL extracts the single canonical result URL from a decoded
// provider output. The second return is false when no rule matched.
func ResolveOutputURL(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	for _, match := range outputMatchers {
		if url, ok := match(v); ok {
			return url, true
		}
	}
	return "", false
}

// Rule 1: the output itself is an http(s) URL.
func matchHTTPString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s, true
	}
	return "", false
}

// Rule 2: an array whose first element is a string.
func matchFirstArrayString(v any) (string, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return "", false
	}
	s, ok := arr[0].(string)
	return s, ok
}

// Rule 3: an object with a string "url" field.
func matchURLField(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj["url"].(string)
	return s, ok
}

// Rule 4: an object whose "output" field is an array.
func matchOutputArray(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	arr, ok := obj["output"].([]any)
	if !ok || len(arr) == 0 {
		return "", false
	}
	s, ok := arr[0].(string)
	return s, ok
}

// Rule 5: an object whose "output" field is a string.
func matchOutputString(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj["output"].(string)
	return s, ok
}

// DescribeOutput reports the JSON kind and, for objects, the sorted key set
// of a provider output. Used for the diagnostic body of INVALID_OUTPUT
// responses.
func DescribeOutput(raw json.RawMessage) (kind string, keys []string) {
	if len(raw) == 0 {
		return "absent", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "malformed", nil
	}
	switch t := v.(type) {
	case nil:
		return "null", nil
	case string:
		return "string", nil
	case bool:
		return "boolean", nil
	case float64:
		return "number", nil
	case []any:
		return "array", nil
	case map[string]any:
		keys = make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "object", keys
	default:
		return "unknown", nil
	}
}
