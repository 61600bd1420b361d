package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/medcatalog/internal/catalog"
	"github.com/vyrodovalexey/medcatalog/internal/model"
)

// MemoryStore implements Store over a single in-memory catalog.
type MemoryStore struct {
	mu        sync.RWMutex
	catalog   *catalog.Catalog
	publisher Publisher
	logger    *zap.Logger
}

// NewMemoryStore creates a new MemoryStore seeded with seed, or with
// catalog.DefaultMedicines when seed is empty. publisher may be nil.
func NewMemoryStore(seed []string, publisher Publisher, logger *zap.Logger) *MemoryStore {
	c := catalog.New()
	if len(seed) > 0 {
		c = catalog.FromItems(seed)
	}

	s := &MemoryStore{
		catalog:   c,
		publisher: publisher,
		logger:    logger,
	}
	s.updateGaugesLocked()

	return s
}

// Add appends a medicine unless it is already present.
func (s *MemoryStore) Add(ctx context.Context, name string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("add medicine: %w", ctx.Err())
	default:
	}

	if name == "" {
		return false, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.catalog.Add(name)
	s.commitLocked("add", changed, s.eventLocked(changed, model.EventMedicineAdded, name))
	return changed, nil
}

// Delete removes a medicine together with its favorite flag and order slot.
func (s *MemoryStore) Delete(ctx context.Context, name string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("delete medicine: %w", ctx.Err())
	default:
	}

	if name == "" {
		return false, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.catalog.Delete(name)
	s.commitLocked("delete", changed, s.eventLocked(changed, model.EventMedicineDeleted, name))
	return changed, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *MemoryStore) ToggleFavorite(ctx context.Context, name string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("toggle favorite: %w", ctx.Err())
	default:
	}

	if name == "" {
		return false, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	favorite := s.catalog.ToggleFavorite(name)
	event := s.eventLocked(true, model.EventFavoriteToggled, name)
	event.Favorite = favorite
	s.commitLocked("toggle_favorite", true, event)
	return favorite, nil
}

// Reorder moves dragged into the position of target.
func (s *MemoryStore) Reorder(ctx context.Context, dragged, target string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("reorder medicines: %w", ctx.Err())
	default:
	}

	if dragged == "" || target == "" {
		return false, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.catalog.Reorder(dragged, target)
	event := s.eventLocked(changed, model.EventMedicinesReordered, dragged)
	event.Target = target
	s.commitLocked("reorder", changed, event)
	return changed, nil
}

// Filtered returns the medicines matching query, ignoring case.
func (s *MemoryStore) Filtered(ctx context.Context, query string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("filter medicines: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Filtered(query), nil
}

// Ordered returns the favorites-first display order.
func (s *MemoryStore) Ordered(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("order medicines: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Ordered(), nil
}

// IsFavorite reports whether name is marked favorite.
func (s *MemoryStore) IsFavorite(ctx context.Context, name string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check favorite: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.IsFavorite(name), nil
}

// Suggest returns up to limit names close to query.
func (s *MemoryStore) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("suggest medicines: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Suggest(query, limit), nil
}

// Snapshot returns every view of the catalog at once.
func (s *MemoryStore) Snapshot(ctx context.Context) (model.Catalog, error) {
	select {
	case <-ctx.Done():
		return model.Catalog{}, fmt.Errorf("snapshot catalog: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.Catalog{
		Items:     s.catalog.Items(),
		Favorites: s.catalog.Favorites(),
		Order:     s.catalog.Order(),
		Ordered:   s.catalog.Ordered(),
	}, nil
}

// eventLocked builds the change event while the write lock is held so the
// attached views match the mutation. It returns a zero event when nothing changed.
func (s *MemoryStore) eventLocked(changed bool, eventType, name string) model.CatalogEvent {
	if !changed {
		return model.CatalogEvent{}
	}

	event := model.NewCatalogEvent(eventType, name)
	event.Ordered = s.catalog.Ordered()
	event.Favorites = s.catalog.Favorites()
	return event
}

// commitLocked records metrics, logs and publishes. It runs under the write
// lock so events reach the publisher in mutation order and the gauges never
// lag behind the catalog. Publisher.Publish must not block.
func (s *MemoryStore) commitLocked(operation string, changed bool, event model.CatalogEvent) {
	recordOperation(operation, changed)

	if !changed {
		s.logger.Debug("catalog unchanged", zap.String("operation", operation))
		return
	}

	s.updateGaugesLocked()

	s.logger.Debug("catalog changed",
		zap.String("operation", operation),
		zap.String("event_id", event.ID),
		zap.String("name", event.Name),
	)

	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}

func (s *MemoryStore) updateGaugesLocked() {
	catalogMedicines.Set(float64(s.catalog.Len()))
	catalogFavorites.Set(float64(len(s.catalog.Favorites())))
}
