package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ParseResult decodes a provider payload and checks it against schema. Any failure is a ParseError.
func ParseResult(payload string, schema *Schema) (Result, error) {
	raw := stripFences(payload)
	if raw == "" {
		return Result{}, ParseError(errors.New("empty response payload"))
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Result{}, ParseError(err)
	}

	normalized, err := conform(doc, schema, "$")
	if err != nil {
		return Result{}, ParseError(err)
	}

	buf, err := json.Marshal(normalized)
	if err != nil {
		return Result{}, ParseError(err)
	}
	var result Result
	if err := json.NewDecoder(bytes.NewReader(buf)).Decode(&result); err != nil {
		return Result{}, ParseError(err)
	}
	fillRequiredLists(&result)
	return result, nil
}

// stripFences removes a markdown code fence some models wrap around JSON.
func stripFences(payload string) string {
	s := strings.TrimSpace(payload)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// conform validates v against s and returns v with integers rounded and unknown keys dropped.
func conform(v any, s *Schema, path string) (any, error) {
	if s == nil {
		return v, nil
	}
	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, typeMismatch(path, s.Type, v)
		}
		for _, key := range s.Required {
			if val, present := obj[key]; !present || val == nil {
				return nil, fmt.Errorf("%s.%s: required field missing", path, key)
			}
		}
		out := make(map[string]any, len(obj))
		for key, val := range obj {
			prop, known := s.Properties[key]
			if !known || val == nil {
				continue
			}
			clean, err := conform(val, prop, path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = clean
		}
		return out, nil

	case TypeArray:
		list, ok := v.([]any)
		if !ok {
			return nil, typeMismatch(path, s.Type, v)
		}
		out := make([]any, 0, len(list))
		for i, item := range list {
			clean, err := conform(item, s.Items, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, clean)
		}
		return out, nil

	case TypeString:
		str, ok := v.(string)
		if !ok {
			return nil, typeMismatch(path, s.Type, v)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return nil, fmt.Errorf("%s: %q is not one of %v", path, str, s.Enum)
		}
		return str, nil

	case TypeInteger, TypeNumber:
		num, ok := v.(json.Number)
		if !ok {
			return nil, typeMismatch(path, s.Type, v)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if s.Minimum != nil && f < *s.Minimum {
			return nil, fmt.Errorf("%s: %v below minimum %v", path, f, *s.Minimum)
		}
		if s.Maximum != nil && f > *s.Maximum {
			return nil, fmt.Errorf("%s: %v above maximum %v", path, f, *s.Maximum)
		}
		if s.Type == TypeInteger {
			return int64(math.Round(f)), nil
		}
		return f, nil

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, typeMismatch(path, s.Type, v)
		}
		return b, nil
	}
	return v, nil
}

func typeMismatch(path string, want Type, got any) error {
	return fmt.Errorf("%s: expected %s, got %T", path, want, got)
}

func fillRequiredLists(r *Result) {
	if r.ProductIdentity.Elements == nil {
		r.ProductIdentity.Elements = []string{}
	}
	if r.PositiveAttributes == nil {
		r.PositiveAttributes = []string{}
	}
	if r.Tradeoffs == nil {
		r.Tradeoffs = []string{}
	}
	if r.FunctionalIngredients == nil {
		r.FunctionalIngredients = []FunctionalIngredient{}
	}
	if r.AwarenessFlags == nil {
		r.AwarenessFlags = []string{}
	}
}
