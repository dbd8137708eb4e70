package tools

import (
	"fmt"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// Kind enumerates the known tools. Dispatch switches over Kind, so adding a
// tool means adding a case rather than a map entry.
type Kind int

const (
	KindUnknown Kind = iota
	KindQueryExpenses
	KindCalculateStatistics
	KindGroupByCategory
)

var kindNames = [...]string{
	KindUnknown:             "unknown",
	KindQueryExpenses:       "queryExpenses",
	KindCalculateStatistics: "calculateStatistics",
	KindGroupByCategory:     "groupByCategory",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a tool name from the model to its Kind; unrecognised names
// map to KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if Kind(k) != KindUnknown && n == name {
			return Kind(k)
		}
	}
	return KindUnknown
}

// ToolDefinition describes one tool as advertised to the model.
type ToolDefinition struct {
	Kind        Kind
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Schema      Schema
}

func reflectSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// GenerateSchema derives the model-facing input schema from T's struct tags.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	schema := reflectSchema[T]()
	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
		Required:   schema.Required,
	}
}

// SchemaFor derives the validation field specs from the same struct tags as
// GenerateSchema.
func SchemaFor[T any]() Schema {
	return schemaFromJSONSchema(reflectSchema[T]())
}

// withEnumCode reports out-of-enum values of field with code instead of
// CodeValidation.
func (d ToolDefinition) withEnumCode(field, code string) ToolDefinition {
	fields := slices.Clone(d.Schema.Fields)
	for i := range fields {
		if fields[i].Name == field {
			fields[i].EnumCode = code
		}
	}
	d.Schema.Fields = fields
	return d
}

func newDefinition[T any](kind Kind, description string) ToolDefinition {
	return ToolDefinition{
		Kind:        kind,
		Name:        kind.String(),
		Description: description,
		InputSchema: GenerateSchema[T](),
		Schema:      SchemaFor[T](),
	}
}
