package model

import (
	"context"
	"fmt"
	"sync"
)

// ProviderSet maps provider names to implementations so callers can select
// a backend by the name carried in configuration.
type ProviderSet struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewProviderSet builds a set from the given providers, keyed by Name().
func NewProviderSet(providers ...Provider) *ProviderSet {
	s := &ProviderSet{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	return s
}

// Register adds or replaces a provider.
func (s *ProviderSet) Register(p Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.Name()] = p
}

// Get returns the provider registered under name.
func (s *ProviderSet) Get(name string) (Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return p, nil
}

// Build resolves cfg.Provider and constructs a Model from it.
func (s *ProviderSet) Build(ctx context.Context, cfg Config) (Model, error) {
	p, err := s.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return p.NewModel(ctx, cfg)
}
