package tools

import (
	"encoding/json"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// Definitions returns all tool definitions in advertised order.
func Definitions() []ToolDefinition {
	return []ToolDefinition{QueryExpensesDefinition, CalculateStatisticsDefinition, GroupByCategoryDefinition}
}

// Registry binds the tool definitions to a record store. It holds no mutable
// state and is safe for concurrent use.
type Registry struct {
	store *expense.Store
	defs  []ToolDefinition
}

// NewRegistry returns a registry over store.
func NewRegistry(store *expense.Store) *Registry {
	return &Registry{store: store, defs: Definitions()}
}

// Definitions returns the registry's tool definitions.
func (r *Registry) Definitions() []ToolDefinition {
	return r.defs
}

// Execute validates input against the named tool's schema, runs the tool and
// returns its JSON result. Every failure is a ToolError.
func (r *Registry) Execute(name string, input json.RawMessage) (string, error) {
	kind := ParseKind(name)
	def, ok := r.definition(kind)
	if !ok {
		return "", ToolError{Code: CodeUnknownTool, Message: "tool not found: " + name}
	}
	args, err := def.Schema.Validate(input)
	if err != nil {
		return "", err
	}

	var result any
	switch kind {
	case KindQueryExpenses:
		var in QueryExpensesInput
		if err := decode(args, &in); err != nil {
			return "", err
		}
		result, err = QueryExpenses(r.store.Records(), in)
	case KindCalculateStatistics:
		var in CalculateStatisticsInput
		if err := decode(args, &in); err != nil {
			return "", err
		}
		result, err = CalculateStatistics(r.store.Records(), in)
	case KindGroupByCategory:
		var in GroupByCategoryInput
		if err := decode(args, &in); err != nil {
			return "", err
		}
		result, err = GroupByCategory(r.store.Records(), in)
	default:
		return "", ToolError{Code: CodeUnknownTool, Message: "tool not found: " + name}
	}
	if err != nil {
		return "", err
	}

	b, err := json.Marshal(result)
	if err != nil {
		return "", computationError("encode result: %v", err)
	}
	return string(b), nil
}

func (r *Registry) definition(kind Kind) (ToolDefinition, bool) {
	for _, d := range r.defs {
		if d.Kind == kind {
			return d, true
		}
	}
	return ToolDefinition{}, false
}

func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return validationError("", "decode arguments: %v", err)
	}
	return nil
}
