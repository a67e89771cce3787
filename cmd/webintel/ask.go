package main

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/webintel"
	"github.com/fwojciec/webintel/query"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	var opts []query.Option
	if c.MaxTokens > 0 {
		opts = append(opts, query.WithMaxTokens(c.MaxTokens))
	}
	orchestrator := query.NewOrchestrator(deps.Agent, deps.Storage, opts...)

	if c.Stream {
		_, err := orchestrator.StreamQuery(deps.Ctx, c.Question, c.Source, c.Session, func(fragment string) error {
			_, err := fmt.Fprint(deps.Stdout, fragment)
			return err
		})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", webintel.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout)
	} else {
		result, err := orchestrator.Query(deps.Ctx, c.Question, c.Source, c.Session)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", webintel.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, result.Response)
		fmt.Fprintf(deps.Stdout, "\nModel: %s | Tokens: %s\n", result.ModelUsed, formatTokenCount(result.TokensUsed))
	}

	if c.Session != "" {
		fmt.Fprintf(deps.Stdout, "\nSession: %s\n", c.Session)
	}
	return nil
}

func formatTokenCount(n int) string {
	if n == 0 {
		return "N/A"
	}
	return strconv.Itoa(n)
}
