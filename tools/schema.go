package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// FieldType is the JSON type of an argument field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
)

// Field is the validation spec of one argument.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Default     any
	Enum        []string
	EnumCode    string // ToolError code for values outside Enum; CodeValidation when empty
	Format      string
	Description string
}

// Schema is the ordered set of fields a tool accepts.
type Schema struct {
	Fields []Field
}

// Field returns the spec named name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func schemaFromJSONSchema(js *jsonschema.Schema) Schema {
	var s Schema
	if js == nil || js.Properties == nil {
		return s
	}
	for pair := js.Properties.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		f := Field{
			Name:        pair.Key,
			Type:        FieldType(p.Type),
			Required:    slices.Contains(js.Required, pair.Key),
			Default:     p.Default,
			Format:      p.Format,
			Description: p.Description,
		}
		for _, e := range p.Enum {
			f.Enum = append(f.Enum, fmt.Sprint(e))
		}
		s.Fields = append(s.Fields, f)
	}
	return s
}

// Validate checks raw tool arguments against the schema and returns them with
// defaults filled in for absent optional fields. JSON null counts as absent.
// Unknown and repeated fields are rejected. Failures are ToolErrors with CodeValidation.
func (s Schema) Validate(input json.RawMessage) (json.RawMessage, error) {
	raw := []byte(strings.TrimSpace(string(input)))
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}
	if !gjson.ValidBytes(raw) {
		return nil, validationError("", "arguments are not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, validationError("", "arguments must be a JSON object")
	}

	var bad error
	seen := make(map[string]bool)
	root.ForEach(func(key, _ gjson.Result) bool {
		name := key.String()
		if _, ok := s.Field(name); !ok {
			bad = validationError(name, "unknown field %q", name)
			return false
		}
		if seen[name] {
			bad = validationError(name, "duplicate field %q", name)
			return false
		}
		seen[name] = true
		return true
	})
	if bad != nil {
		return nil, bad
	}

	out := slices.Clone(raw)
	for _, f := range s.Fields {
		v := root.Get(gjson.Escape(f.Name))
		if !v.Exists() || v.Type == gjson.Null {
			if f.Required {
				return nil, validationError(f.Name, "missing required field %q", f.Name)
			}
			if f.Default != nil {
				var err error
				if out, err = sjson.SetBytes(out, f.Name, f.Default); err != nil {
					return nil, validationError(f.Name, "cannot apply default: %v", err)
				}
			}
			continue
		}
		if err := f.check(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f Field) check(v gjson.Result) error {
	switch f.Type {
	case TypeString:
		if v.Type != gjson.String {
			return validationError(f.Name, "field %q must be a string", f.Name)
		}
	case TypeNumber:
		if v.Type != gjson.Number {
			return validationError(f.Name, "field %q must be a number", f.Name)
		}
	case TypeInteger:
		if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) {
			return validationError(f.Name, "field %q must be an integer", f.Name)
		}
	case TypeBoolean:
		if !v.IsBool() {
			return validationError(f.Name, "field %q must be a boolean", f.Name)
		}
	}
	if len(f.Enum) > 0 && !slices.Contains(f.Enum, v.String()) {
		code := f.EnumCode
		if code == "" {
			code = CodeValidation
		}
		return ToolError{
			Code:    code,
			Field:   f.Name,
			Message: fmt.Sprintf("field %q must be one of %s", f.Name, strings.Join(f.Enum, ", ")),
		}
	}
	if f.Format == "date" {
		if _, err := expense.ParseDate(v.String()); err != nil {
			return validationError(f.Name, "field %q: %v", f.Name, err)
		}
	}
	return nil
}
