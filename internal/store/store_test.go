package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/timetable-admin/internal/api"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	recs, err := s.List(ctx, "students")
	require.NoError(t, err)
	assert.Empty(t, recs)

	a, err := s.Create(ctx, "students", map[string]any{"name": "Asha"})
	require.NoError(t, err)
	b, err := s.Create(ctx, "students", map[string]any{"name": "Ravi"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "faculty", map[string]any{"name": "Dr. Rao"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "students", a.Collection)

	recs, err = s.List(ctx, "students")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Asha", recs[0].Data["name"])
	assert.Equal(t, "Ravi", recs[1].Data["name"])

	got, err := s.Get(ctx, "students", b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Data["name"])

	require.NoError(t, s.Delete(ctx, "students", a.ID))
	assert.ErrorIs(t, s.Delete(ctx, "students", a.ID), ErrNotFound)

	_, err = s.Get(ctx, "students", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	recs, err = s.List(ctx, "students")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, b.ID, recs[0].ID)

	_, err = s.List(ctx, "../etc")
	assert.ErrorIs(t, err, ErrInvalidCollection)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_CreateCopiesData(t *testing.T) {
	m := NewMemory()
	data := map[string]any{"name": "Asha"}
	rec, err := m.Create(context.Background(), "students", data)
	require.NoError(t, err)

	data["name"] = "changed"
	got, err := m.Get(context.Background(), "students", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Data["name"])
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStore(t, f)

	// survives reopening
	reopened, err := NewFile(dir)
	require.NoError(t, err)
	recs, err := reopened.List(context.Background(), "faculty")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Dr. Rao", recs[0].Data["name"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, ".json", filepath.Ext(e.Name()), "leftover temp file %s", e.Name())
	}
}

func TestFile_CorruptCollection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "students.json"), []byte("{nope"), 0o644))

	f, err := NewFile(dir)
	require.NoError(t, err)
	_, err = f.List(context.Background(), "students")
	assert.Error(t, err)
}

func TestValidateCollection(t *testing.T) {
	assert.NoError(t, ValidateCollection("infrastructure"))
	assert.NoError(t, ValidateCollection("time_slots2"))
	assert.Error(t, ValidateCollection(""))
	assert.Error(t, ValidateCollection("Students"))
	assert.Error(t, ValidateCollection("a/b"))
}

func TestRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/classrooms":
			_, _ = io.WriteString(w, `[{"id":1,"room_number":"A-101","capacity":40}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/classrooms":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["id"] = 2
			_ = json.NewEncoder(w).Encode(body)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/classrooms/2":
			_, _ = io.WriteString(w, `{"deleted":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Classroom not found"}`)
		}
	}))
	defer srv.Close()

	r := NewRemote(api.New(srv.URL), map[string]string{"classrooms": "/api/classrooms"})
	ctx := context.Background()

	recs, err := r.List(ctx, "classrooms")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "A-101", recs[0].Data["room_number"])
	assert.NotContains(t, recs[0].Data, "id")

	rec, err := r.Create(ctx, "classrooms", map[string]any{"room_number": "B-2", "capacity": 30})
	require.NoError(t, err)
	assert.Equal(t, "2", rec.ID)

	require.NoError(t, r.Delete(ctx, "classrooms", "2"))
	assert.ErrorIs(t, r.Delete(ctx, "classrooms", "9"), ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "classrooms", "not-a-number"), ErrNotFound)

	_, err = r.List(ctx, "students")
	assert.ErrorIs(t, err, ErrInvalidCollection)
}
