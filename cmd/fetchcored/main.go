package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/fastengine"
	"github.com/archfetch/fetchcore/obslog"
	"github.com/archfetch/fetchcore/rodpool"
	"github.com/archfetch/fetchcore/scheduler"
	"github.com/archfetch/fetchcore/sqlite"
	"github.com/archfetch/fetchcore/stealth"
	"github.com/archfetch/fetchcore/unblock"
)

func main() {
	ctx := context.Background()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	DBPath string

	DB        *sqlite.DB
	Scheduler *scheduler.Scheduler
	Configs   *fetchcore.ConfigStore
	Pool      *rodpool.Pool
	Logs      *obslog.Handler
	Logger    *slog.Logger
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{DBPath: defaultDBPath()}
}

// Close gracefully stops the program, disconnecting the browser pool
// and closing the database.
func (m *Main) Close() error {
	if m.Pool != nil {
		_ = m.Pool.Disconnect()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments, wiring every
// component before dispatching to the selected subcommand.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := fetchcore.ConfigFromEnv()

	handler := obslog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	m.Logs = handler
	m.Logger = slog.New(handler)

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	profiles := sqlite.NewProfileStore(m.DB)

	m.Configs = fetchcore.NewConfigStore(cfg)

	fast := fastengine.New()
	var browserEngine fetchcore.Engine
	var unblockEngine fetchcore.Engine
	if cfg.BrowserlessURL != "" {
		m.Pool = rodpool.New()
		if err := m.Pool.Connect(ctx, fetchcore.PoolConfig{
			BrowserlessURL: cfg.BrowserlessURL,
			Stealth:        cfg.BrowserStealth,
			Proxy:          cfg.ProxyURL,
		}); err != nil {
			m.Logger.Warn("browser pool connect failed, browser/unblock engines disabled", "err", err)
		} else {
			browserEngine = rodpool.NewLoggingEngine(rodpool.NewEngine(m.Pool), m.Logger)
			unblockEngine = unblock.New(cfg.BrowserlessURL)
		}
	}
	stealthEngine := stealth.New()

	registry := &scheduler.Registry{
		Fast:    fast,
		Browser: browserEngine,
		Stealth: stealthEngine,
		Unblock: unblockEngine,
	}
	m.Scheduler = scheduler.New(registry, profiles, m.Configs, m.Logger)

	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Main:    m,
		Profiles: profiles,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fetchcored"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("creating parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified, run 'fetchcored --help'")
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if v := os.Getenv("FETCHCORE_DB_PATH"); v != "" {
		return v
	}
	return "fetchcore.db"
}
