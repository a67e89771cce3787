package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/webintel"
	"github.com/fwojciec/webintel/query"
)

// Run executes the chat command.
func (c *ChatCmd) Run(deps *Dependencies) error {
	sessionID := c.Session
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%s", time.Now().Format("20060102_150405"))
	}

	orchestrator := query.NewOrchestrator(deps.Agent, deps.Storage)

	fmt.Fprintf(deps.Stdout, "Source: %s\n", c.Source)
	fmt.Fprintf(deps.Stdout, "Session: %s\n", sessionID)
	fmt.Fprintln(deps.Stdout, "Type 'exit' or 'quit' to stop.")
	fmt.Fprintln(deps.Stdout)

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "You: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if lower := strings.ToLower(question); lower == "exit" || lower == "quit" {
			fmt.Fprintln(deps.Stdout, "Goodbye!")
			break
		}

		// Errors answer a single question; the session keeps going.
		result, err := orchestrator.Query(deps.Ctx, question, c.Source, sessionID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", webintel.ErrorMessage(err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "Assistant: %s\n\n", result.Response)
	}
	return scanner.Err()
}
