package telemetry

import (
	"os"
	"sync/atomic"
)

var observeEnabled atomic.Bool

func init() {
	// Read once at process start; binaries may override from loaded config.
	observeEnabled.Store(os.Getenv("AGT_OBSERVE_JSON") == "1")
}

// SetObserve enables or disables JSONL emission for the process.
func SetObserve(on bool) { observeEnabled.Store(on) }

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	// Allow tests to enable mid-run via env override.
	if os.Getenv("AGT_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled.Load()
}

// artifactsDir is where events.jsonl lives; AGT_ARTIFACTS_DIR overrides .agent.
func artifactsDir() string {
	if d := os.Getenv("AGT_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return ".agent"
}
