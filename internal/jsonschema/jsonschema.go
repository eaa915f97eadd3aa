package jsonschema

import (
	"reflect"
	"strings"
)

// Schema represents the subset of JSON Schema used to describe tool
// parameters and structured outputs: types, properties, required fields,
// and array item schemas.
type Schema struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object type, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items defines the element schema of an array type
	Items *Schema `json:"items,omitempty"`
	// Enum lists the allowed values for the field
	Enum []any `json:"enum,omitempty"`
	// AdditionalProperties controls whether undeclared properties are allowed
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}

// GenerateJSONSchema derives a Schema from the Go type T via reflection.
// Struct fields map to object properties using their json tags; fields
// without a tag use the Go field name. Non-pointer fields are required.
// A `description` struct tag becomes the property description.
func GenerateJSONSchema[T any]() *Schema {
	return schemaForType(reflect.TypeFor[T]())
}

func schemaForType(t reflect.Type) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: schemaForType(t.Elem())}

	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: schemaForType(t.Elem())}

	case reflect.Struct:
		return schemaForStruct(t)

	default:
		// Interfaces and other dynamic kinds carry no constraint.
		return &Schema{}
	}
}

func schemaForStruct(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitempty, skip := fieldName(field)
		if skip {
			continue
		}

		fieldSchema := schemaForType(field.Type)
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema.Description = description
		}
		schema.Properties[name] = fieldSchema

		// Pointer fields and omitempty-tagged fields are optional.
		if field.Type.Kind() != reflect.Pointer && !omitempty {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// fieldName resolves the JSON property name of a struct field from its json
// tag, reporting whether the field is omitempty-tagged or excluded entirely.
func fieldName(field reflect.StructField) (name string, omitempty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name = field.Name
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, option := range parts[1:] {
		if option == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}
