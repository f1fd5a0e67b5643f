package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/archfetch/fetchcore/advanced"
	"github.com/archfetch/fetchcore/httpapi"
)

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}

// Run starts the HTTP server and blocks until it exits or errors.
func (c *ServeCmd) Run(deps *Dependencies) error {
	m := deps.Main

	// httpapi.Pool and httpapi.Orchestrator are interfaces: passing a
	// nil *rodpool.Pool/*advanced.Orchestrator directly would produce a
	// non-nil interface wrapping a nil pointer, so these stay
	// interface-typed nil unless the pool actually connected.
	var orchestrator httpapi.Orchestrator
	var pool httpapi.Pool
	if m.Pool != nil {
		orchestrator = advanced.New(m.Pool, advanced.NewHTTPUploadSink())
		pool = m.Pool
	}

	srv := httpapi.New(m.Scheduler, orchestrator, pool, deps.Profiles, m.Configs, m.Logs, m.Logger)

	m.Logger.Info("fetchcored listening", "addr", c.Addr)
	if err := http.ListenAndServe(c.Addr, srv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
