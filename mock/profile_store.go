package mock

import (
	"context"

	"github.com/archfetch/fetchcore"
)

var _ fetchcore.ProfileStore = (*ProfileStore)(nil)

// ProfileStore is a mock implementation of fetchcore.ProfileStore.
type ProfileStore struct {
	GetFn          func(ctx context.Context, domain string) (*fetchcore.DomainProfile, error)
	UpsertFn       func(ctx context.Context, domain string, input *fetchcore.DomainProfile) (*fetchcore.DomainProfile, error)
	IncrementHitFn func(ctx context.Context, domain string) error
	DeleteFn       func(ctx context.Context, domain string) error
	AllFn          func(ctx context.Context) ([]*fetchcore.DomainProfile, error)
}

func (s *ProfileStore) Get(ctx context.Context, domain string) (*fetchcore.DomainProfile, error) {
	return s.GetFn(ctx, domain)
}

func (s *ProfileStore) Upsert(ctx context.Context, domain string, input *fetchcore.DomainProfile) (*fetchcore.DomainProfile, error) {
	return s.UpsertFn(ctx, domain, input)
}

func (s *ProfileStore) IncrementHit(ctx context.Context, domain string) error {
	return s.IncrementHitFn(ctx, domain)
}

func (s *ProfileStore) Delete(ctx context.Context, domain string) error {
	return s.DeleteFn(ctx, domain)
}

func (s *ProfileStore) All(ctx context.Context) ([]*fetchcore.DomainProfile, error) {
	return s.AllFn(ctx)
}
