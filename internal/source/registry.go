package source

import (
	"context"
	"fmt"

	"truthtracker/internal/domain"
)

// Fetcher captures a single retrieval strategy (feed, api, scrape).
type Fetcher interface {
	Type() domain.FetchType
	Fetch(ctx context.Context, src domain.Source) ([]domain.CandidateContent, error)
}

// Registry keeps a mapping from fetch types to their implementations.
type Registry struct {
	fetchers map[domain.FetchType]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[domain.FetchType]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(f Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[domain.FetchType]Fetcher{}
	}
	r.fetchers[f.Type()] = f
}

// Resolve returns a fetcher by type or an error if it is absent.
func (r *Registry) Resolve(fetchType domain.FetchType) (Fetcher, error) {
	if f, ok := r.fetchers[fetchType]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unsupported source type: %s", fetchType)
}
