package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/petasbytes/expense-agent/internal/cli"
	"github.com/petasbytes/expense-agent/internal/runner"
)

func main() {
	cli.LoadEnvFile()

	// Basic env check (SDK also reads API key)
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	// Ctrl-C (SIGINT) / SIGTERM cancels the question in flight and exits
	ctx, cancel := cli.SignalContext()
	defer cancel()

	st, err := cli.Setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	sess := st.NewSession()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Ask about your expenses (today is %s). /history, /reset, Ctrl-C to quit\n", sess.ReferenceDate())

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Println("\nExiting...")
			break outer
		case line, ok = <-inputCh:
			if !ok {
				break outer
			}
		}

		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/history":
			b, err := sess.Transcript()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println(string(pretty.Pretty(b)))
			continue
		case "/reset":
			sess = st.NewSession()
			fmt.Println("Started a new conversation.")
			continue
		}

		res, err := st.Runner.Run(ctx, sess, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nExiting...")
				break outer
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if res.Outcome != runner.OutcomeAnswered {
			st.Logger.Debug().Str("outcome", string(res.Outcome)).Int("steps", res.Steps).Msg("question ended without model answer")
		}
		fmt.Printf("\u001b[93mAssistant\u001b[0m: %s\n", res.Answer)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
}
