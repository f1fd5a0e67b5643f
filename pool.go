package fetchcore

import "context"

// MaxTabsBeforeRecycle is the number of tabs a slot serves before it
// is marked stale and recycled on its next idle arrival.
const MaxTabsBeforeRecycle = 200

// DefaultPoolSize is the default number of slots in a BrowserPool.
const DefaultPoolSize = 4

// PoolConfig configures a BrowserPool connection.
type PoolConfig struct {
	// BrowserlessURL is the remote browser's WebSocket endpoint
	// (ws:// or wss://).
	BrowserlessURL string
	// Stealth requests the remote browser's stealth launch mode.
	Stealth bool
	// Proxy, if set, is passed to the remote browser as a
	// --proxy-server launch argument.
	Proxy string
	// Size is the number of slots to maintain. Defaults to
	// DefaultPoolSize.
	Size int
}

// SlotStatus is a point-in-time snapshot of one BrowserSlot.
type SlotStatus struct {
	ID            int  `json:"id"`
	Connected     bool `json:"connected"`
	ActiveTabs    int  `json:"activeTabs"`
	TabsUsed      int  `json:"tabsUsed"`
	Stale         bool `json:"stale"`
}

// PoolStatus summarizes the whole pool for the status API.
type PoolStatus struct {
	Slots      []SlotStatus `json:"slots"`
	Connected  bool         `json:"connected"`
	TotalTabs  int          `json:"totalActiveTabs"`
}

// FetchInTabOptions configures a single tab-per-request fetch.
type FetchInTabOptions struct {
	RenderDelayMs int
}

// BrowserPool multiplexes many logical fetches over a small set of
// long-lived remote browser connections using a tab-per-request
// discipline.
type BrowserPool interface {
	// Connect is idempotent; it eagerly warms all slots in parallel.
	Connect(ctx context.Context, cfg PoolConfig) error

	// FetchInTab picks the next slot round-robin, ensures it is
	// connected (recycling if stale and idle, reconnecting if
	// disconnected), opens a new page, navigates, applies the render
	// delay, and returns the rendered DOM content.
	FetchInTab(ctx context.Context, url string, opts FetchInTabOptions) (html string, statusCode int, err error)

	// Disconnect closes keepalives and detaches from all slots.
	Disconnect() error

	// Status returns per-slot state plus totals.
	Status() PoolStatus
}
