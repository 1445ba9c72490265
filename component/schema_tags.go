package component

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/c360/randstream/errors"
)

// SchemaDirectives represents parsed schema tag directives.
//
// Tag syntax: comma separated directives, "key:value" pairs and bare boolean
// flags, enum values separated by pipes:
//
//	schema:"type:enum,description:Sampling family,enum:Uniform|Normal,default:Uniform"
//	schema:"type:float,description:Lower bound,category:basic"
//	schema:"readonly,type:string,description:Port identifier"
type SchemaDirectives struct {
	Type        string // required
	Description string

	Category string // "basic" or "advanced"
	ReadOnly bool
	Editable bool
	Hidden   bool

	Default  any // stored as string, converted during schema generation
	Required bool
	Min      *int
	Max      *int
	Enum     []string
}

// PortFieldInfo describes metadata for PortDefinition fields
type PortFieldInfo struct {
	Type     string `json:"type"`
	Editable bool   `json:"editable"`
}

var validSchemaTypes = []string{
	"string", "int", "bool", "float", "enum", "array", "object", "ports",
}

// ParseSchemaTag parses a schema struct tag into directives.
// The type directive is required; everything else is optional.
func ParseSchemaTag(tag string) (SchemaDirectives, error) {
	directives := SchemaDirectives{}

	if tag == "" {
		return directives, errors.WrapInvalid(
			fmt.Errorf("empty schema tag"),
			"SchemaTag", "ParseSchemaTag", "tag validation",
		)
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, ":") {
			if err := parseBooleanFlag(part, &directives); err != nil {
				return directives, err
			}
			continue
		}

		if err := parseKeyValueDirective(part, &directives); err != nil {
			return directives, err
		}
	}

	if directives.Type == "" {
		return directives, errors.WrapInvalid(
			fmt.Errorf("type directive is required"),
			"SchemaTag", "ParseSchemaTag", "required field validation",
		)
	}

	return directives, nil
}

func parseBooleanFlag(flag string, directives *SchemaDirectives) error {
	switch flag {
	case "readonly":
		directives.ReadOnly = true
	case "editable":
		directives.Editable = true
	case "hidden":
		directives.Hidden = true
	case "required":
		directives.Required = true
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown boolean flag: %s", flag),
			"SchemaTag", "parseBooleanFlag", "flag parsing",
		)
	}
	return nil
}

func parseKeyValueDirective(part string, directives *SchemaDirectives) error {
	key, value, _ := strings.Cut(part, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if value == "" {
		return errors.WrapInvalid(
			fmt.Errorf("empty value for directive: %s", key),
			"SchemaTag", "parseKeyValueDirective", "value validation",
		)
	}

	switch key {
	case "type":
		if !slices.Contains(validSchemaTypes, value) {
			return errors.WrapInvalid(
				fmt.Errorf("invalid type: %s", value),
				"SchemaTag", "parseKeyValueDirective", "type validation",
			)
		}
		directives.Type = value

	case "description":
		directives.Description = value

	case "category":
		if value != "basic" && value != "advanced" {
			return errors.WrapInvalid(
				fmt.Errorf("invalid category: %s (must be 'basic' or 'advanced')", value),
				"SchemaTag", "parseKeyValueDirective", "category validation",
			)
		}
		directives.Category = value

	case "default":
		directives.Default = value

	case "min", "max":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("invalid %s value: %s", key, value),
				"SchemaTag", "parseKeyValueDirective", key+" parsing",
			)
		}
		if key == "min" {
			directives.Min = &n
		} else {
			directives.Max = &n
		}

	case "enum":
		directives.Enum = strings.Split(value, "|")
		for i := range directives.Enum {
			directives.Enum[i] = strings.TrimSpace(directives.Enum[i])
		}

	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown directive: %s", key),
			"SchemaTag", "parseKeyValueDirective", "directive validation",
		)
	}

	return nil
}

// GenerateConfigSchema builds a ConfigSchema from the json and schema tags of
// a struct type. Call it once at package init and keep the result.
//
// Only fields carrying both tags are included. Fields with invalid schema
// tags are skipped. Pointer types are dereferenced; non-struct types yield an
// empty schema.
func GenerateConfigSchema(configType reflect.Type) ConfigSchema {
	schema := ConfigSchema{
		Properties: make(map[string]PropertySchema),
		Required:   []string{},
	}

	if configType.Kind() == reflect.Ptr {
		configType = configType.Elem()
	}
	if configType.Kind() != reflect.Struct {
		return schema
	}

	for i := 0; i < configType.NumField(); i++ {
		field := configType.Field(i)

		fieldName := jsonFieldName(field)
		if fieldName == "" {
			continue
		}

		schemaTag := field.Tag.Get("schema")
		if schemaTag == "" {
			continue
		}

		directives, err := ParseSchemaTag(schemaTag)
		if err != nil {
			continue
		}

		description := directives.Description
		if description == "" {
			description = fieldName
		}

		propSchema := PropertySchema{
			Type:        directives.Type,
			Description: description,
			Category:    directives.Category,
			Default:     convertDefault(directives.Default, directives.Type),
			Minimum:     directives.Min,
			Maximum:     directives.Max,
			Enum:        directives.Enum,
		}

		if directives.Type == "ports" {
			propSchema.PortFields = GeneratePortFieldSchema()
		}

		schema.Properties[fieldName] = propSchema

		if directives.Required {
			schema.Required = append(schema.Required, fieldName)
		}
	}

	return schema
}

func jsonFieldName(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "" || jsonTag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(jsonTag, ",")
	return name
}

// convertDefault converts a default value string to the field's type.
// Unconvertible values become nil.
func convertDefault(value any, fieldType string) any {
	valueStr, ok := value.(string)
	if !ok {
		return value
	}

	switch fieldType {
	case "string", "enum":
		return valueStr

	case "int":
		n, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return nil
		}
		return n

	case "bool":
		b, err := strconv.ParseBool(valueStr)
		if err != nil {
			return nil
		}
		return b

	case "float":
		f, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil
		}
		return f

	case "array":
		if valueStr == "" {
			return []string{}
		}
		return []string{valueStr}

	case "object", "ports":
		return nil

	default:
		return valueStr
	}
}

// GeneratePortFieldSchema describes which PortDefinition fields are editable.
// Fields without a schema tag are read-only strings.
func GeneratePortFieldSchema() map[string]PortFieldInfo {
	portType := reflect.TypeOf(PortDefinition{})
	fields := make(map[string]PortFieldInfo)

	for i := 0; i < portType.NumField(); i++ {
		field := portType.Field(i)

		fieldName := jsonFieldName(field)
		if fieldName == "" {
			continue
		}

		schemaTag := field.Tag.Get("schema")
		if schemaTag == "" {
			fields[fieldName] = PortFieldInfo{Type: "string"}
			continue
		}

		directives, err := ParseSchemaTag(schemaTag)
		if err != nil {
			continue
		}

		fields[fieldName] = PortFieldInfo{
			Type:     directives.Type,
			Editable: directives.Editable,
		}
	}

	return fields
}
