package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event names.
const (
	EventQuestionReceived = "question_received"
	EventModelCall        = "model_call"
	EventToolExec         = "tool_exec"
	EventAnswer           = "answer"
)

var writeMu sync.Mutex

// Emit writes a single JSON line to events.jsonl when observation is on.
// Each line carries the event name, an RFC3339Nano UTC time, and the turn and
// session ids found in ctx. Reserved keys in fields are ignored.
func Emit(ctx context.Context, name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		switch k {
		case "event", "time", "turn_id", "session_id":
			continue
		}
		m[k] = v
	}
	if id, ok := TurnIDFromContext(ctx); ok {
		m["turn_id"] = id
	}
	if id, ok := SessionIDFromContext(ctx); ok {
		m["session_id"] = id
	}

	dir := artifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	w := zerolog.New(f)
	w.Log().
		Str("time", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("event", name).
		Fields(m).
		Send()
}
