package main

import "fmt"

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	count, err := deps.QdrantStore.Import(deps.Ctx, c.Input)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Imported %d points from %s\n", count, c.Input)
	return nil
}
