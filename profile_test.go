package fetchcore_test

import (
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/stretchr/testify/assert"
)

func TestDomainProfile_IsDefaultWinner(t *testing.T) {
	t.Parallel()

	t.Run("proxy configured, proxy win is default", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Engine: string(fetchcore.EngineFast), UseProxy: true, RenderDelayMs: 0}
		assert.True(t, p.IsDefaultWinner(true))
	})

	t.Run("proxy configured, direct win is non-default", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Engine: string(fetchcore.EngineFast), UseProxy: false, RenderDelayMs: 0}
		assert.False(t, p.IsDefaultWinner(true))
	})

	t.Run("no proxy configured, direct win is default", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Engine: string(fetchcore.EngineFast), UseProxy: false, RenderDelayMs: 0}
		assert.True(t, p.IsDefaultWinner(false))
	})

	t.Run("non-fast engine is never default", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Engine: string(fetchcore.EngineBrowser)}
		assert.False(t, p.IsDefaultWinner(true))
	})

	t.Run("non-zero delay is never default", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Engine: string(fetchcore.EngineFast), UseProxy: true, RenderDelayMs: 2000}
		assert.False(t, p.IsDefaultWinner(true))
	})
}

func TestDomainProfile_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires domain", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Engine: string(fetchcore.EngineFast)}
		err := p.Validate()
		assert.Equal(t, fetchcore.EINVALID, fetchcore.ErrorCode(err))
	})

	t.Run("requires known engine", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Domain: "example.com", Engine: "bogus"}
		err := p.Validate()
		assert.Equal(t, fetchcore.EINVALID, fetchcore.ErrorCode(err))
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		p := &fetchcore.DomainProfile{Domain: "example.com", Engine: string(fetchcore.EngineStealth)}
		assert.NoError(t, p.Validate())
	})
}

func TestDomainProfileUpdate_Apply(t *testing.T) {
	t.Parallel()

	t.Run("unset fields leave base untouched", func(t *testing.T) {
		t.Parallel()
		base := fetchcore.DomainProfile{Domain: "example.com", Engine: string(fetchcore.EngineStealth), RenderJS: true, UseProxy: true}
		upd := fetchcore.DomainProfileUpdate{Domain: "example.com"}
		got := upd.Apply(base)
		assert.Equal(t, base.Engine, got.Engine)
		assert.Equal(t, base.RenderJS, got.RenderJS)
		assert.Equal(t, base.UseProxy, got.UseProxy)
	})

	t.Run("set fields override base", func(t *testing.T) {
		t.Parallel()
		base := fetchcore.DomainProfile{Domain: "example.com", Engine: string(fetchcore.EngineStealth), UseProxy: true}
		useProxy := false
		upd := fetchcore.DomainProfileUpdate{Domain: "example.com", UseProxy: &useProxy}
		got := upd.Apply(base)
		assert.Equal(t, string(fetchcore.EngineStealth), got.Engine)
		assert.False(t, got.UseProxy)
	})

	t.Run("applying onto zero value builds a fresh profile", func(t *testing.T) {
		t.Parallel()
		engine := string(fetchcore.EngineFast)
		upd := fetchcore.DomainProfileUpdate{Domain: "new.com", Engine: &engine}
		got := upd.Apply(fetchcore.DomainProfile{})
		assert.NoError(t, got.Validate())
		assert.Equal(t, "new.com", got.Domain)
		assert.Equal(t, string(fetchcore.EngineFast), got.Engine)
	})
}
