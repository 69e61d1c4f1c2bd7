package main

import (
	"fmt"

	"github.com/fwojciec/rfqtrack"
	rfqhttp "github.com/fwojciec/rfqtrack/http"
)

// Run executes the serve command. An empty store is seeded with a blocking
// crawl before the API starts listening.
func (c *ServeCmd) Run(deps *Dependencies) error {
	summary, err := deps.Runner.Seed(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: initial crawl: %s\n", rfqtrack.ErrorMessage(err))
		return err
	}
	if summary != nil {
		printSummary(deps.Stdout, summary)
	}

	addr := deps.Config.HTTP.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	return deps.Serve(deps.Ctx, &rfqhttp.Server{
		Addr:           addr,
		Queries:        deps.Queries,
		Runner:         deps.Runner,
		Gatherer:       deps.Gatherer,
		AllowedOrigins: deps.Config.HTTP.CORSOrigins,
		Logger:         deps.Logger,
	})
}
