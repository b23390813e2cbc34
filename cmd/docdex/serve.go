package main

import (
	dochttp "github.com/docdex/docdex/http"
)

// Run executes the serve command, blocking until the context is
// cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := dochttp.NewServer(c.Addr, deps.Asker, deps.Embedder, deps.Store,
		dochttp.WithServerTopK(deps.Config.TopK),
		dochttp.WithServerLogger(deps.Logger),
	)
	return server.ListenAndServe(deps.Ctx)
}
