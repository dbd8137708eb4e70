package main

import (
	"fmt"
	"os"
	"time"

	"github.com/petasbytes/expense-agent/internal/api"
	"github.com/petasbytes/expense-agent/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	st, err := cli.Setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log := st.Logger

	assistant := api.SessionAssistant{Runner: st.Runner, Session: st.NewSession()}
	app := api.NewApp(api.NewHandler(assistant, log))

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", st.Config.HTTPAddr).Msg("listening")
	if err := app.Listen(st.Config.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
