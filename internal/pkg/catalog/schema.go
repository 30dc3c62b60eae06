package catalog

// InputSchema renders the spec's parameters as a JSON-schema object in the
// OpenAI function-parameters shape. Both model providers consume this form.
func (s ToolSpec) InputSchema() map[string]any {
	properties := make(map[string]any, len(s.Params))
	required := make([]string, 0, len(s.Params))

	for _, p := range s.Params {
		prop := map[string]any{
			"description": p.Description,
		}
		switch p.Type {
		case TypeString:
			prop["type"] = "string"
		case TypeNumber:
			prop["type"] = "number"
		case TypeBoolean:
			prop["type"] = "boolean"
		case TypeStringArray:
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		case TypeEnum:
			prop["type"] = "string"
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
