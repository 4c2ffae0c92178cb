package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MrWong99/callaudit/pkg/provider/classifier"
	"github.com/MrWong99/callaudit/pkg/provider/embedder"
	"github.com/MrWong99/callaudit/pkg/provider/transcriber"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// external collaborator type. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	transcriber map[string]func(ProviderEntry) (transcriber.Provider, error)
	embedder    map[string]func(ProviderEntry) (embedder.Provider, error)
	classifier  map[string]func(ProviderEntry) (classifier.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		transcriber: make(map[string]func(ProviderEntry) (transcriber.Provider, error)),
		embedder:    make(map[string]func(ProviderEntry) (embedder.Provider, error)),
		classifier:  make(map[string]func(ProviderEntry) (classifier.Provider, error)),
	}
}

// RegisterTranscriber registers a transcriber factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterTranscriber(name string, factory func(ProviderEntry) (transcriber.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcriber[name] = factory
}

// RegisterEmbedder registers an embedder factory under name.
func (r *Registry) RegisterEmbedder(name string, factory func(ProviderEntry) (embedder.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedder[name] = factory
}

// RegisterClassifier registers a classifier factory under name.
func (r *Registry) RegisterClassifier(name string, factory func(ProviderEntry) (classifier.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classifier[name] = factory
}

// CreateTranscriber instantiates a transcriber using the factory registered
// under entry.Name. Returns [ErrProviderNotRegistered] if no factory has
// been registered for that name.
func (r *Registry) CreateTranscriber(entry ProviderEntry) (transcriber.Provider, error) {
	r.mu.RLock()
	factory, ok := r.transcriber[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: transcriber/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateEmbedder instantiates an embedder using the factory registered
// under entry.Name.
func (r *Registry) CreateEmbedder(entry ProviderEntry) (embedder.Provider, error) {
	r.mu.RLock()
	factory, ok := r.embedder[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: embedder/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateClassifier instantiates a classifier using the factory registered
// under entry.Name.
func (r *Registry) CreateClassifier(entry ProviderEntry) (classifier.Provider, error) {
	r.mu.RLock()
	factory, ok := r.classifier[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: classifier/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
