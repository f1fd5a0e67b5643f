package main

import "fmt"

// ProfilesListCmd lists every persisted domain profile.
type ProfilesListCmd struct{}

// Run implements the profiles list subcommand.
func (c *ProfilesListCmd) Run(deps *Dependencies) error {
	all, err := deps.Profiles.All(deps.Ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(deps.Stdout, "no domain profiles recorded")
		return nil
	}
	for _, p := range all {
		fmt.Fprintf(deps.Stdout, "%-30s engine=%-10s renderJs=%-5v useProxy=%-5v hits=%d\n",
			p.Domain, p.Engine, p.RenderJS, p.UseProxy, p.HitCount)
	}
	return nil
}

// ProfilesGetCmd shows one domain profile in full.
type ProfilesGetCmd struct {
	Domain string `arg:"" help:"Domain to look up"`
}

// Run implements the profiles get subcommand.
func (c *ProfilesGetCmd) Run(deps *Dependencies) error {
	p, err := deps.Profiles.Get(deps.Ctx, c.Domain)
	if err != nil {
		return err
	}
	if p == nil {
		fmt.Fprintf(deps.Stdout, "no profile recorded for %s\n", c.Domain)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "domain:         %s\n", p.Domain)
	fmt.Fprintf(deps.Stdout, "engine:         %s\n", p.Engine)
	fmt.Fprintf(deps.Stdout, "renderJs:       %v\n", p.RenderJS)
	fmt.Fprintf(deps.Stdout, "renderDelayMs:  %d\n", p.RenderDelayMs)
	fmt.Fprintf(deps.Stdout, "useProxy:       %v\n", p.UseProxy)
	fmt.Fprintf(deps.Stdout, "preset:         %s\n", p.Preset)
	fmt.Fprintf(deps.Stdout, "hitCount:       %d\n", p.HitCount)
	fmt.Fprintf(deps.Stdout, "lastStatusCode: %d\n", p.LastStatusCode)
	return nil
}

// ProfilesDeleteCmd removes a domain profile, forcing the next fetch
// for that domain back through the full escalation ladder.
type ProfilesDeleteCmd struct {
	Domain string `arg:"" help:"Domain to forget"`
}

// Run implements the profiles delete subcommand.
func (c *ProfilesDeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Profiles.Delete(deps.Ctx, c.Domain); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "deleted profile for %s\n", c.Domain)
	return nil
}
