package scoring

import "strings"

// Lookup resolves a dot-separated path like "rawData.mortgageRate" against
// nested map data. The second return is false whenever any segment is
// missing or the value at an intermediate segment is not a map; callers
// treat that as "field absent", never as an error.
func Lookup(data map[string]interface{}, path string) (interface{}, bool) {
	if data == nil || path == "" {
		return nil, false
	}

	var current interface{} = data
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, exists := node[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	return current, true
}
