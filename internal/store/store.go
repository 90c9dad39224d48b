// Package store is the document store the services read and write. Every
// user owns a document under users/{uid} and named collections beneath it.
package store

import (
	"context"
	"errors"
)

const (
	Journals          = "journals"
	MoodEntries       = "moodEntries"
	Activities        = "activities"
	Chores            = "chores"
	Contacts          = "contacts"
	AvoidanceZones    = "avoidanceZones"
	ProgressSnapshots = "progressSnapshots"
)

// Interactions is the collection of logged calls and texts for one contact.
func Interactions(contactID string) string {
	return Contacts + "/" + contactID + "/interactions"
}

// ErrNotFound is returned by Get and Update when the document is absent.
var ErrNotFound = errors.New("document not found")

type Document struct {
	ID   string
	Data map[string]any
}

// Query filters on Field >= Since (skipped when Since is empty) and orders
// by Field. Stored instants use isotime.Layout so string order is time order.
type Query struct {
	Field string
	Since string
	Desc  bool
	Limit int
}

// Increment is an update value that adds By to the current number.
type Increment struct {
	By int64
}

type Store interface {
	List(ctx context.Context, uid, collection string) ([]Document, error)
	Query(ctx context.Context, uid, collection string, q Query) ([]Document, error)
	Get(ctx context.Context, uid, collection, id string) (Document, error)
	Create(ctx context.Context, uid, collection string, data map[string]any) (string, error)
	// Set writes the whole document, or only the given fields when merge is true.
	Set(ctx context.Context, uid, collection, id string, data map[string]any, merge bool) error
	// Update changes the given fields of an existing document. Keys may be
	// dotted paths into nested maps.
	Update(ctx context.Context, uid, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, uid, collection, id string) error
	// DeleteAll removes every document in the named collections in one batch.
	DeleteAll(ctx context.Context, uid string, collections []string) error

	GetUser(ctx context.Context, uid string) (map[string]any, error)
	SetUser(ctx context.Context, uid string, data map[string]any, merge bool) error
	UpdateUser(ctx context.Context, uid string, fields map[string]any) error
	ListUserIDs(ctx context.Context) ([]string, error)

	Close() error
}
