// Package tools defines the expense tools exposed to the model.
//
// Includes:
//   - ToolDefinition: kind, name, description, JSON input schema, field specs.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Schema.Validate: per-field presence, type, enum and format checks with typed defaults.
//   - Tools: queryExpenses, calculateStatistics, groupByCategory.
//   - Registry: exhaustive dispatch by Kind over a read-only expense.Store.
//
// Every tool is a pure read over the store.
package tools
