package main

import "fmt"

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	count, err := deps.QdrantStore.Export(deps.Ctx, c.Output)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported %d points to %s\n", count, c.Output)
	return nil
}
