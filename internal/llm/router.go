package llm

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrUnknownProvider       = errors.New("provider not found")
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Router resolves a provider name from a generation request to a
// registered provider. Registration happens once at startup; lookups are
// concurrent.
type Router struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	defaultName string
}

func NewRouter(defaultName string) *Router {
	return &Router{
		providers:   make(map[string]Provider),
		defaultName: defaultName,
	}
}

// Register adds p under its own name, replacing an earlier registration
func (r *Router) Register(p Provider) {
	r.mu.Lock()
	r.providers[p.Name()] = p
	r.mu.Unlock()
}

// Resolve returns the named provider, or the default one for an empty
// name. Unregistered names fail with ErrUnknownProvider and providers
// without credentials with ErrProviderNotConfigured.
func (r *Router) Resolve(name string) (Provider, error) {
	if name == "" {
		name = r.defaultName
	}

	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	case !p.IsConfigured():
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}
	return p, nil
}

// Configured lists the names of providers that can serve requests, sorted
func (r *Router) Configured() []string {
	var names []string
	for _, info := range r.Catalog() {
		if info.Configured {
			names = append(names, info.Name)
		}
	}
	return names
}

func (r *Router) Default() string {
	return r.defaultName
}

// ProviderInfo describes a registered provider for the provider listing
type ProviderInfo struct {
	Name         string   `json:"name"`
	Models       []string `json:"models"`
	DefaultModel string   `json:"default_model"`
	Default      bool     `json:"default"`
	Configured   bool     `json:"configured"`
}

// Catalog describes every registered provider, configured or not, by name
func (r *Router) Catalog() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for name, p := range r.providers {
		infos = append(infos, ProviderInfo{
			Name:         name,
			Models:       p.AvailableModels(),
			DefaultModel: p.DefaultModel(),
			Default:      name == r.defaultName,
			Configured:   p.IsConfigured(),
		})
	}
	slices.SortFunc(infos, func(a, b ProviderInfo) int { return cmp.Compare(a.Name, b.Name) })
	return infos
}
