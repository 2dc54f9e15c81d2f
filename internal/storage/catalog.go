// Package storage records finished profiles in a database catalog.
//
// Backends live in subpackages and register themselves from init():
//
//	import _ "metaprobe/internal/storage/sqlite"
//
// after which NewCatalog selects one by kind.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	apperrors "metaprobe/internal/errors"
)

// Config selects and configures a catalog backend.
type Config struct {
	Kind string
	DSN  string
}

// Catalog persists profile records.
//
// Implementations write one profile (its row and all of its field rows) in a
// single transaction: either everything for a run is visible or nothing is.
type Catalog interface {
	// EnsureSchema creates the catalog tables when they do not exist yet.
	// Safe to call on every run.
	EnsureSchema(ctx context.Context) error

	// SaveProfile inserts one profile and its fields.
	SaveProfile(ctx context.Context, rec ProfileRecord) error

	// Close releases connections. Call once.
	Close()
}

// Factory opens a backend for cfg.
type Factory func(ctx context.Context, cfg Config) (Catalog, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// RegisterCatalog registers a backend under kind. It panics when kind is
// empty, f is nil, or kind is already taken.
func RegisterCatalog(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: RegisterCatalog called with empty kind")
	}
	if f == nil {
		panic("storage: RegisterCatalog called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: catalog factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Kinds lists the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewCatalog opens the backend registered for cfg.Kind. Factory failures
// that are not already AppErrors are reported as CodeStorage.
func NewCatalog(ctx context.Context, cfg Config) (Catalog, error) {
	if cfg.Kind == "" {
		return nil, apperrors.ConfigInvalid("storage: missing catalog kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, apperrors.ConfigInvalidf("unsupported catalog kind=%s", cfg.Kind)
	}
	c, err := f(ctx, cfg)
	if err != nil {
		var ae *apperrors.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperrors.StorageError(cfg.Kind, err)
	}
	return c, nil
}
