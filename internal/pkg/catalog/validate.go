package catalog

import (
	"fmt"
	"slices"
)

// ValidationError names the offending field so the orchestrator can hand the
// model a correctable message.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks an argument map against a spec. It is pure; an empty slice
// means the arguments are acceptable for synthesis.
func Validate(spec ToolSpec, args map[string]any) []ValidationError {
	var errs []ValidationError

	for _, p := range spec.Params {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				errs = append(errs, ValidationError{Field: p.Name, Reason: "required parameter is missing"})
			}
			continue
		}

		switch p.Type {
		case TypeString:
			if _, ok := v.(string); !ok {
				errs = append(errs, ValidationError{Field: p.Name, Reason: fmt.Sprintf("expected string, got %T", v)})
			}
		case TypeNumber:
			if !isNumber(v) {
				errs = append(errs, ValidationError{Field: p.Name, Reason: fmt.Sprintf("expected number, got %T", v)})
			}
		case TypeBoolean:
			if _, ok := v.(bool); !ok {
				errs = append(errs, ValidationError{Field: p.Name, Reason: fmt.Sprintf("expected boolean, got %T", v)})
			}
		case TypeStringArray:
			items, ok := toStringSlice(v)
			if !ok {
				errs = append(errs, ValidationError{Field: p.Name, Reason: fmt.Sprintf("expected array of strings, got %T", v)})
			} else if len(items) == 0 {
				errs = append(errs, ValidationError{Field: p.Name, Reason: "array must not be empty"})
			}
		case TypeEnum:
			s, ok := v.(string)
			if !ok {
				errs = append(errs, ValidationError{Field: p.Name, Reason: fmt.Sprintf("expected string, got %T", v)})
			} else if !slices.Contains(p.Enum, s) {
				errs = append(errs, ValidationError{Field: p.Name, Reason: fmt.Sprintf("%q is not one of %v", s, p.Enum)})
			}
		}
	}

	return errs
}

// isNumber accepts the numeric types JSON decoding may produce.
func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}

// toStringSlice normalizes []string and []any-of-string argument shapes.
func toStringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Typed argument accessors (used by synthesis after validation)
// ---------------------------------------------------------------------------

// ArgString returns a string argument or the fallback.
func ArgString(args map[string]any, name, fallback string) string {
	if s, ok := args[name].(string); ok && s != "" {
		return s
	}
	return fallback
}

// ArgNumber returns a numeric argument or the fallback.
func ArgNumber(args map[string]any, name string, fallback float64) float64 {
	switch x := args[name].(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	}
	return fallback
}

// ArgStrings returns a string-array argument, or nil when absent.
func ArgStrings(args map[string]any, name string) []string {
	items, ok := toStringSlice(args[name])
	if !ok {
		return nil
	}
	return items
}

// HasArg reports whether an argument was supplied and non-nil.
func HasArg(args map[string]any, name string) bool {
	v, ok := args[name]
	return ok && v != nil
}
