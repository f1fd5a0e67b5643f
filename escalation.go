package fetchcore

// EscalationStep is one rung of the escalation ladder: a computed,
// never-persisted combination of engine, JS-rendering intent, render
// delay, and proxy use.
type EscalationStep struct {
	Engine        EngineKind
	RenderJS      bool
	RenderDelayMs int
	UseProxy      bool
	Label         string
}

// Ladder builds the ordered escalation ladder from the current
// configuration. Steps whose Condition does not hold are omitted
// entirely — they are never attempted and never counted toward "every
// step failed".
func Ladder(cfg Config) []EscalationStep {
	hasProxy := cfg.ProxyURL != ""
	hasBrowserless := cfg.BrowserlessURL != ""

	var steps []EscalationStep
	if hasProxy {
		steps = append(steps, EscalationStep{
			Engine: EngineFast, UseProxy: true, Label: "fast:proxy",
		})
	}
	steps = append(steps, EscalationStep{
		Engine: EngineFast, UseProxy: false, Label: "fast:direct",
	})
	if hasBrowserless {
		steps = append(steps, EscalationStep{
			Engine: EngineBrowser, RenderJS: true, RenderDelayMs: 2000, Label: "browser:pool",
		})
	}
	steps = append(steps, EscalationStep{
		Engine: EngineStealth, RenderJS: true, RenderDelayMs: 3000, Label: "stealth:3s",
	})
	if hasBrowserless {
		steps = append(steps, EscalationStep{
			Engine: EngineStealth, RenderJS: true, RenderDelayMs: 5000, Label: "stealth:5s",
		})
		steps = append(steps, EscalationStep{
			Engine: EngineUnblock, Label: "unblock",
		})
	}
	return steps
}

// DefaultStep is the scheduler's implicit starting point: fast engine,
// proxy if configured, no delay. A win matching this step (see
// DomainProfile.IsDefaultWinner) is never persisted.
func DefaultStep(cfg Config) EscalationStep {
	if cfg.ProxyURL != "" {
		return EscalationStep{Engine: EngineFast, UseProxy: true, Label: "fast:proxy"}
	}
	return EscalationStep{Engine: EngineFast, UseProxy: false, Label: "fast:direct"}
}
