// Package cli holds the start-up steps shared by cmd/agent and cmd/server.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/config"
	"github.com/petasbytes/expense-agent/internal/expense"
	"github.com/petasbytes/expense-agent/internal/logger"
	"github.com/petasbytes/expense-agent/internal/provider"
	"github.com/petasbytes/expense-agent/internal/runner"
	"github.com/petasbytes/expense-agent/internal/source"
	"github.com/petasbytes/expense-agent/internal/telemetry"
	"github.com/petasbytes/expense-agent/memory"
)

// LoadEnvFile loads .env for local development. A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Stack is what a binary needs to answer questions.
type Stack struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  *expense.Store
	Runner *runner.Runner
}

// Setup loads and validates configuration, loads the record store and builds
// a runner backed by the Anthropic model.
func Setup(ctx context.Context) (*Stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel)
	telemetry.SetObserve(cfg.ObserveJSON)

	p, err := source.New(cfg.DataBackend, cfg.DataPath, source.Options{Strict: cfg.StrictData, Logger: log})
	if err != nil {
		return nil, err
	}
	store, err := source.LoadStore(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load records from %s: %w", cfg.DataPath, err)
	}

	model := provider.NewAnthropic(provider.NewAnthropicClient(), cfg.Model, int64(cfg.MaxTokens), cfg.TokenBudget)
	r := runner.New(model, runner.Options{
		StepBudget: cfg.StepBudget,
		Parallel:   cfg.ParallelTools,
		Logger:     log,
	})

	log.Info().
		Str("backend", cfg.DataBackend).
		Str("path", cfg.DataPath).
		Int("records", store.Len()).
		Str("reference_date", cfg.ReferenceDate).
		Msg("assistant ready")

	return &Stack{Config: cfg, Logger: log, Store: store, Runner: r}, nil
}

// NewSession starts an empty conversation over the stack's records.
func (s *Stack) NewSession() *memory.Session {
	return memory.NewSession(s.Store, s.Config.Reference())
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
