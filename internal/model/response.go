package model

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Catalog event types.
const (
	EventMedicineAdded      = "medicine_added"
	EventMedicineDeleted    = "medicine_deleted"
	EventFavoriteToggled    = "favorite_toggled"
	EventMedicinesReordered = "medicines_reordered"
)

// CatalogEvent describes a change to the catalog together with the views
// a client needs to re-render.
type CatalogEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Target    string    `json:"target,omitempty"`
	Favorite  bool      `json:"favorite,omitempty"`
	Ordered   []string  `json:"ordered"`
	Favorites []string  `json:"favorites"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCatalogEvent creates an event with a fresh ID and the current time.
func NewCatalogEvent(eventType, name string) CatalogEvent {
	return CatalogEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Name:      name,
		Timestamp: time.Now().UTC(),
	}
}

// WebSocketMessage represents a message sent over WebSocket connection.
type WebSocketMessage struct {
	Type      string        `json:"type"`
	Catalog   *Catalog      `json:"catalog,omitempty"`
	Event     *CatalogEvent `json:"event,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// WebSocket message types.
const (
	WSMessageTypeSnapshot     = "snapshot"
	WSMessageTypeCatalogEvent = "catalog_event"
	WSMessageTypePing         = "ping"
	WSMessageTypePong         = "pong"
	WSMessageTypeError        = "error"
)

// NewSnapshotMessage wraps a full catalog view for a newly connected client.
func NewSnapshotMessage(c Catalog) WebSocketMessage {
	return WebSocketMessage{
		Type:      WSMessageTypeSnapshot,
		Catalog:   &c,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorMessage reports a problem with a client message.
func NewErrorMessage(msg string) WebSocketMessage {
	return WebSocketMessage{
		Type:      WSMessageTypeError,
		Error:     msg,
		Timestamp: time.Now().UTC(),
	}
}

// NewPongMessage answers a client ping.
func NewPongMessage() WebSocketMessage {
	return WebSocketMessage{
		Type:      WSMessageTypePong,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventMessage wraps a catalog change.
func NewEventMessage(e CatalogEvent) WebSocketMessage {
	return WebSocketMessage{
		Type:      WSMessageTypeCatalogEvent,
		Event:     &e,
		Timestamp: time.Now().UTC(),
	}
}
