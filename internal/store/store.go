// Package store provides the shared, context-aware access layer over the medicine catalog.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/medcatalog/internal/model"
)

// Store errors.
var (
	ErrInvalidName = errors.New("invalid medicine name")
)

// Publisher receives catalog changes after they are applied. Publish is
// called with the store's write lock held, in mutation order, and must not
// block or call back into the store.
type Publisher interface {
	Publish(event model.CatalogEvent)
}

// Store defines the operations available on the medicine catalog.
// Mutators report whether the catalog changed; unknown or duplicate names are
// not errors.
type Store interface {
	// Add appends a medicine unless it is already present.
	Add(ctx context.Context, name string) (bool, error)

	// Delete removes a medicine together with its favorite flag and order slot.
	Delete(ctx context.Context, name string) (bool, error)

	// ToggleFavorite flips the favorite flag and returns the new value.
	ToggleFavorite(ctx context.Context, name string) (bool, error)

	// Reorder moves dragged into the position of target.
	Reorder(ctx context.Context, dragged, target string) (bool, error)

	// Filtered returns the medicines matching query, ignoring case.
	Filtered(ctx context.Context, query string) ([]string, error)

	// Ordered returns the favorites-first display order.
	Ordered(ctx context.Context) ([]string, error)

	// IsFavorite reports whether name is marked favorite.
	IsFavorite(ctx context.Context, name string) (bool, error)

	// Suggest returns up to limit names close to query.
	Suggest(ctx context.Context, query string, limit int) ([]string, error)

	// Snapshot returns every view of the catalog at once.
	Snapshot(ctx context.Context) (model.Catalog, error)
}
