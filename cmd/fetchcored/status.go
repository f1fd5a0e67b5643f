package main

import "fmt"

// StatusCmd prints the current config and browser pool status.
type StatusCmd struct{}

// Run implements the status subcommand.
func (c *StatusCmd) Run(deps *Dependencies) error {
	cfg := deps.Main.Configs.Load()
	fmt.Fprintf(deps.Stdout, "default engine: %s\n", cfg.DefaultEngine)
	fmt.Fprintf(deps.Stdout, "browserless url: %s\n", cfg.BrowserlessURL)
	fmt.Fprintf(deps.Stdout, "proxy: %s\n", cfg.ProxyURL)

	if deps.Main.Pool == nil {
		fmt.Fprintln(deps.Stdout, "browser pool: not configured")
		return nil
	}

	status := deps.Main.Pool.Status()
	fmt.Fprintf(deps.Stdout, "browser pool: connected=%v total active tabs=%d\n", status.Connected, status.TotalTabs)
	for _, slot := range status.Slots {
		fmt.Fprintf(deps.Stdout, "  slot %d: connected=%v active=%d used=%d stale=%v\n",
			slot.ID, slot.Connected, slot.ActiveTabs, slot.TabsUsed, slot.Stale)
	}
	return nil
}
