package jsonschema

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Schema represents the structure of JSON Schema used for describing the
// expected shape of generated output. It follows the JSON Schema standard,
// supporting the subset of keywords the scene-plan prompt needs: types,
// properties, required lists, array items, enums and defaults.
type Schema struct {
	// Type specifies the data type (e.g., "object", "array", "string", "number")
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of the object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties controls whether undeclared properties are allowed
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default value for the field
	Default any `json:"default,omitempty"`
	// Enum contains the list of allowed values for the field
	Enum []any `json:"enum,omitempty"`
}

// String returns the schema serialized as compact JSON, for embedding in
// prompts.
func (s *Schema) String() string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// GenerateJSONSchema generates a JSON schema for type T. Field names follow
// json tags; fields tagged json:"-" or unexported are skipped. A field is
// required unless its json tag carries omitempty or its jsonschema tag says
// otherwise; the jsonschema tag also supports "required", "enum=a|b|c" and
// "description=...".
func GenerateJSONSchema[T any]() *Schema {
	return generate(reflect.TypeOf((*T)(nil)).Elem())
}

func generate(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.Ptr:
		return generate(t.Elem())

	case reflect.Struct:
		return generateStruct(t)

	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: generate(t.Elem())}

	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: true}

	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Interface:
		return &Schema{} // any

	default:
		return &Schema{Type: "string"}
	}
}

func generateStruct(t reflect.Type) *Schema {
	schema := &Schema{Type: "object"}
	properties := map[string]*Schema{}
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		isOptional := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					isOptional = true
				}
			}
		}

		fieldSchema := generate(field.Type)
		applyTagOverrides(fieldSchema, field.Tag.Get("jsonschema"), &isOptional)
		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		}

		properties[fieldName] = fieldSchema
		if !isOptional {
			required = append(required, fieldName)
		}
	}

	if len(properties) > 0 {
		schema.Properties = properties
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

// applyTagOverrides folds the jsonschema struct tag into the field schema.
func applyTagOverrides(s *Schema, tag string, isOptional *bool) {
	if tag == "" {
		return
	}
	for _, part := range strings.Split(tag, ",") {
		switch {
		case part == "required":
			*isOptional = false
		case strings.HasPrefix(part, "enum="):
			// Both "enum=a|b|c" and repeated "enum=a,enum=b" forms work.
			for _, v := range strings.Split(strings.TrimPrefix(part, "enum="), "|") {
				s.Enum = append(s.Enum, v)
			}
		case strings.HasPrefix(part, "description="):
			s.Description = strings.TrimPrefix(part, "description=")
		}
	}
}
