// Package store persists panel records.
//
// A record is an opaque JSON object filed under a collection (one per panel).
// List returns records in creation order.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Record is one stored entity.
type Record struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Store is implemented by every backend.
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	Create(ctx context.Context, collection string, data map[string]any) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}

var collectionRE = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidateCollection rejects names that are unsafe as file names or keys.
func ValidateCollection(name string) error {
	if !collectionRE.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

func copyData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
