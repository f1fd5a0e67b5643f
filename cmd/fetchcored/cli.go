package main

import (
	"context"
	"io"

	"github.com/archfetch/fetchcore"
)

// Dependencies holds every service a subcommand might need, bound into
// Kong at parse time.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Main     *Main
	Profiles fetchcore.ProfileStore
}

// CLI defines the fetchcored command-line surface.
type CLI struct {
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API server"`
	Status   StatusCmd   `cmd:"" help:"Print browser pool and config status"`
	Profiles ProfilesCmd `cmd:"" help:"Inspect and manage domain profiles"`
}

// ProfilesCmd groups the domain-profile admin subcommands.
type ProfilesCmd struct {
	List   ProfilesListCmd   `cmd:"" help:"List domain profiles"`
	Get    ProfilesGetCmd    `cmd:"" help:"Show one domain profile"`
	Delete ProfilesDeleteCmd `cmd:"" help:"Delete a domain profile"`
}
