package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// File stores each collection as a JSON array in <dir>/<collection>.json.
// Writes go through a temp file and rename so a crash never leaves a
// half-written collection.
type File struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{dir: dir, now: time.Now}, nil
}

func (f *File) path(collection string) string {
	return filepath.Join(f.dir, collection+".json")
}

func (f *File) load(collection string) ([]Record, error) {
	data, err := os.ReadFile(f.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}

	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return recs, nil
}

func (f *File) save(collection string, recs []Record) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(f.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), f.path(collection)); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

func (f *File) List(ctx context.Context, collection string) ([]Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(collection)
}

func (f *File) Get(ctx context.Context, collection, id string) (Record, error) {
	recs, err := f.List(ctx, collection)
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (f *File) Create(ctx context.Context, collection string, data map[string]any) (Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	recs, err := f.load(collection)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       copyData(data),
		CreatedAt:  f.now().UTC(),
	}
	if err := f.save(collection, append(recs, rec)); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (f *File) Delete(ctx context.Context, collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	recs, err := f.load(collection)
	if err != nil {
		return err
	}
	for i, r := range recs {
		if r.ID == id {
			return f.save(collection, append(recs[:i:i], recs[i+1:]...))
		}
	}
	return ErrNotFound
}
