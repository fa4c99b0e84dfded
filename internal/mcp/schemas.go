package mcp

import "fmt"

// Schema builders for tool input declarations. Every tool schema is a JSON
// Schema object, possibly with no properties at all.

func objectSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringSchema(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func numberSchema(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func boolSchema(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

func arraySchema(itemType, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": itemType},
		"description": description,
	}
}

func enumSchema(description string, values ...string) map[string]interface{} {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]interface{}{"type": "string", "enum": enum, "description": description}
}

// Argument extraction. JSON numbers arrive as float64, so integer fields are
// read as float64 and truncated.

func missingField(key string) *toolError {
	return &toolError{Code: "MISSING_FIELD", Message: fmt.Sprintf("missing required argument: %s", key)}
}

func invalidField(key, want string) *toolError {
	return &toolError{Code: "INVALID_FIELD", Message: fmt.Sprintf("argument %s must be a %s", key, want)}
}

func requiredString(args map[string]interface{}, key string) (string, *toolError) {
	raw, ok := args[key]
	if !ok {
		return "", missingField(key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", invalidField(key, "non-empty string")
	}
	return s, nil
}

func optionalString(args map[string]interface{}, key string) (string, *toolError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidField(key, "string")
	}
	return s, nil
}

func requiredInt(args map[string]interface{}, key string) (int, *toolError) {
	raw, ok := args[key]
	if !ok {
		return 0, missingField(key)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, invalidField(key, "number")
	}
	return int(f), nil
}

func optionalInt(args map[string]interface{}, key string, fallback int) (int, *toolError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, invalidField(key, "number")
	}
	return int(f), nil
}

func requiredBool(args map[string]interface{}, key string) (bool, *toolError) {
	raw, ok := args[key]
	if !ok {
		return false, missingField(key)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, invalidField(key, "boolean")
	}
	return b, nil
}

func optionalBool(args map[string]interface{}, key string, fallback bool) (bool, *toolError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, invalidField(key, "boolean")
	}
	return b, nil
}

func optionalStringSlice(args map[string]interface{}, key string) ([]string, *toolError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, invalidField(key, "string array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, invalidField(key, "string array")
		}
		out = append(out, s)
	}
	return out, nil
}
