package telemetry

import (
	"context"

	"github.com/petasbytes/expense-agent/internal/metrics"
)

// EmitQuestionReceived records derived features of a question, never its text.
func EmitQuestionReceived(ctx context.Context, question string) {
	if !ObserveEnabled() {
		return
	}
	f := metrics.CountFeatures(question)
	refs := f.MonthRefs
	if refs == nil {
		refs = []string{}
	}
	Emit(ctx, EventQuestionReceived, map[string]any{
		"features_version": "2",
		"question": map[string]any{
			"bytes":      f.Bytes,
			"runes":      f.Runes,
			"words":      f.Words,
			"lines":      f.Lines,
			"numbers":    f.Numbers,
			"month_refs": refs,
		},
	})
}
