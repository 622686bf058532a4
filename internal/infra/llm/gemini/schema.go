package gemini

import (
	"google.golang.org/genai"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

var schemaTypes = map[analysis.Type]genai.Type{
	analysis.TypeObject:  genai.TypeObject,
	analysis.TypeArray:   genai.TypeArray,
	analysis.TypeString:  genai.TypeString,
	analysis.TypeInteger: genai.TypeInteger,
	analysis.TypeNumber:  genai.TypeNumber,
	analysis.TypeBoolean: genai.TypeBoolean,
}

// toSchema converts the provider-neutral schema. String enums need Format "enum".
func toSchema(s *analysis.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             schemaTypes[s.Type],
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrder,
		Enum:             s.Enum,
		Minimum:          s.Minimum,
		Maximum:          s.Maximum,
		Items:            toSchema(s.Items),
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}
