package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract pulls a single value out of a JSON string using a JSONPath
// expression. script.ExtractSpec pulls one value per call, so there is
// no caller for a batch variant.
func Extract(json string, path string) (string, error) {
	// Handle empty JSON
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}

	// Handle empty path
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	// Convert JSONPath to gjson path format
	// JSONPath: $.users[0].name
	// gjson:    users.0.name
	gpath := convertToGjsonPath(path)

	// Extract the value
	result := gjson.Get(json, gpath)
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	// Handle null values
	if result.Type == gjson.Null {
		return "null", nil
	}

	// Return the value as a string
	return result.String(), nil
}

// convertToGjsonPath converts a JSONPath expression to a gjson path format
func convertToGjsonPath(path string) string {
	// Special case for root path
	if path == "$" {
		return "@this"
	}

	// Remove $ prefix
	path = strings.TrimPrefix(path, "$")

	// Handle root path
	if path == "" {
		return "@this"
	}

	// Remove leading dot if present
	path = strings.TrimPrefix(path, ".")

	// Handle bracket notation with single quotes: $['name']
	if strings.Contains(path, "['") {
		path = strings.Replace(path, "['", "", -1)
		path = strings.Replace(path, "']", "", -1)
	}

	// Handle bracket notation with double quotes: $["name"]
	if strings.Contains(path, "[\"") {
		path = strings.Replace(path, "[\"", "", -1)
		path = strings.Replace(path, "\"]", "", -1)
	}

	// Handle direct array access at the root level: $[0] -> 0
	if strings.HasPrefix(path, "[") && strings.Contains(path, "]") {
		endBracket := strings.Index(path, "]")
		if endBracket > 1 {
			index := path[1:endBracket]
			rest := ""
			if len(path) > endBracket+1 {
				rest = path[endBracket+1:]
			}
			path = index + rest
		}
	}

	// Replace array notation [n] with .n for nested paths
	// This is a simple implementation that doesn't handle all JSONPath features
	for i := 0; i < 10; i++ { // Handle up to 10 levels of nesting
		path = strings.Replace(path, "[", ".", -1)
		path = strings.Replace(path, "]", "", -1)
	}

	return path
}
