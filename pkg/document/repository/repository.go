package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Filter is an equality match on a top-level field of the document.
type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter { return Filter{Field: field, Value: value} }

type Snapshot struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Snapshot) Decode(out any) error { return json.Unmarshal(s.Data, out) }

// Store is a schemaless document collection API. Values passed in must
// marshal to a JSON object.
type Store interface {
	// Create stores data under a generated id.
	Create(ctx context.Context, collection string, data any) (Snapshot, error)
	// Set writes data under id, replacing any previous document.
	Set(ctx context.Context, collection, id string, data any) error
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	// Update merges the given top-level fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Query returns matching documents oldest first.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error)
}
