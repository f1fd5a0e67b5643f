// Package fetchcore provides an adaptive URL fetching core that
// transparently negotiates anti-bot defenses across multiple fetch
// strategies.
//
// It unifies a raw HTTP engine, a pooled remote browser engine, a
// local stealth-patched browser engine, and a remote unblock engine
// behind a single Engine contract, walks an escalation ladder across
// them on a per-domain basis, and persists the winning configuration
// so subsequent fetches for the same domain skip straight to it.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g. rodpool/,
// sqlite/, fastengine/).
package fetchcore
