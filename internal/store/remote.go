package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JonMunkholm/timetable-admin/internal/api"
)

// Remote forwards a collection to a backend resource path such as
// "/api/classrooms". Ids are the backend's numeric ids rendered as text.
type Remote struct {
	client *api.Client
	paths  map[string]string
}

// NewRemote maps collections to backend resource paths.
func NewRemote(client *api.Client, paths map[string]string) *Remote {
	p := make(map[string]string, len(paths))
	for k, v := range paths {
		p[k] = v
	}
	return &Remote{client: client, paths: p}
}

func (r *Remote) path(collection string) (string, error) {
	p, ok := r.paths[collection]
	if !ok {
		return "", fmt.Errorf("%w: %q has no backend resource", ErrInvalidCollection, collection)
	}
	return p, nil
}

func (r *Remote) List(ctx context.Context, collection string) ([]Record, error) {
	p, err := r.path(collection)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := r.client.Get(ctx, p, &items); err != nil {
		return nil, translate(err)
	}

	recs := make([]Record, 0, len(items))
	for _, item := range items {
		recs = append(recs, remoteRecord(collection, item))
	}
	return recs, nil
}

func (r *Remote) Get(ctx context.Context, collection, id string) (Record, error) {
	p, err := r.path(collection)
	if err != nil {
		return Record{}, err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return Record{}, ErrNotFound
	}

	var item map[string]any
	if err := r.client.Get(ctx, p+"/"+id, &item); err != nil {
		return Record{}, translate(err)
	}
	return remoteRecord(collection, item), nil
}

func (r *Remote) Create(ctx context.Context, collection string, data map[string]any) (Record, error) {
	p, err := r.path(collection)
	if err != nil {
		return Record{}, err
	}

	var item map[string]any
	if err := r.client.Post(ctx, p, data, &item); err != nil {
		return Record{}, translate(err)
	}
	if item == nil {
		item = copyData(data)
	}
	return remoteRecord(collection, item), nil
}

func (r *Remote) Delete(ctx context.Context, collection, id string) error {
	p, err := r.path(collection)
	if err != nil {
		return err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return ErrNotFound
	}

	var out api.Deleted
	if err := r.client.Delete(ctx, p+"/"+id, &out); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// remoteRecord lifts "id" and "timestamp" out of a backend object.
func remoteRecord(collection string, item map[string]any) Record {
	rec := Record{Collection: collection, Data: make(map[string]any, len(item))}
	for k, v := range item {
		switch k {
		case "id":
			rec.ID = idString(v)
		case "timestamp":
			if s, ok := v.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					rec.CreatedAt = t.UTC()
				}
			}
			rec.Data[k] = v
		default:
			rec.Data[k] = v
		}
	}
	return rec
}

func idString(v any) string {
	switch id := v.(type) {
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case json.Number:
		return id.String()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
