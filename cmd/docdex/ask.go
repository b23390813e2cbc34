package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, ref := range answer.Sources {
			line := ref.URI
			if ref.Section != "" {
				line += " (" + ref.Section + ")"
			}
			fmt.Fprintf(deps.Stdout, "  - %s\n", line)
		}
	}
	fmt.Fprintf(deps.Stdout, "\n(%d ms)\n", answer.TimingMS)
	return nil
}
