package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/store"
)

type testRoom struct {
	Room     string `json:"room" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

func buildTestRoom(row csvimport.NormalizedRow) (any, error) {
	if row.Value("room") == "" {
		return nil, fmt.Errorf("%w: room", ErrSkipRow)
	}
	capacity, err := ParseInt("capacity", row.Value("capacity"))
	if err != nil {
		return nil, err
	}
	return testRoom{Room: row.Value("room"), Capacity: capacity}, nil
}

// registerTestPanels swaps the registry for two small panels.
func registerTestPanels(t *testing.T) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)

	Register(PanelDefinition{
		Info: PanelInfo{
			Key:     "rooms",
			Label:   "Rooms",
			Group:   "Facilities",
			Roles:   []auth.Role{auth.RoleAdmin, auth.RoleFaculty},
			Headers: []string{"room", "capacity"},
		},
		Build: buildTestRoom,
	})
	Register(PanelDefinition{
		Info: PanelInfo{
			Key:      "slots",
			Group:    "Facilities",
			Roles:    []auth.Role{auth.RoleAdmin},
			Headers:  []string{"day"},
			Resource: "/api/timeslots",
		},
		Build: func(row csvimport.NormalizedRow) (any, error) {
			return map[string]string{"day": row.Value("day")}, nil
		},
	})
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Local == nil {
		opts.Local = store.NewMemory()
	}
	s, err := NewService(opts)
	require.NoError(t, err)
	return s
}

func csvUpload(name, body string) csvimport.Upload {
	return csvimport.Upload{Name: name, Body: strings.NewReader(body)}
}

func TestRegistry(t *testing.T) {
	registerTestPanels(t)

	assert.Equal(t, 2, Count())
	assert.Equal(t, []string{"Facilities"}, Groups())

	def, ok := Get("slots")
	require.True(t, ok)
	assert.Equal(t, "slots", def.Info.Label)

	assert.Len(t, ForRole(auth.RoleAdmin), 2)
	assert.Len(t, ForRole(auth.RoleFaculty), 1)
	assert.Empty(t, ForRole(auth.RoleStudent))

	assert.Panics(t, func() {
		Register(PanelDefinition{Info: PanelInfo{Key: "rooms", Headers: []string{"x"}}, Build: buildTestRoom})
	})
	assert.Panics(t, func() {
		Register(PanelDefinition{Info: PanelInfo{Key: "empty"}})
	})
}

func TestService_ImportOrderAndFailures(t *testing.T) {
	registerTestPanels(t)
	mem := store.NewMemory()
	s := newTestService(t, Options{Local: mem})

	body := "Room,Capacity\nA-101,40\n,10\nLab 2,lots\nB-7,\n"
	res, err := s.Import(context.Background(), auth.RoleAdmin, "rooms", csvUpload("rooms.csv", body))
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalRows)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.FailedRows, 2)
	assert.Equal(t, 3, res.FailedRows[0].Line)
	assert.Contains(t, res.FailedRows[0].Reason, "row skipped")
	assert.Equal(t, 4, res.FailedRows[1].Line)
	assert.Contains(t, res.FailedRows[1].Reason, "invalid number")
	assert.Equal(t, "lots", res.FailedRows[1].Data["capacity"])
	assert.NotEmpty(t, res.ImportID)

	recs, err := mem.List(context.Background(), "rooms")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A-101", recs[0].Data["room"])
	assert.Equal(t, float64(40), recs[0].Data["capacity"])
	assert.Equal(t, "B-7", recs[1].Data["room"])
	assert.Equal(t, float64(0), recs[1].Data["capacity"])

	history := s.Imports()
	require.Len(t, history, 1)
	assert.Equal(t, res.ImportID, history[0].ImportID)
}

type failingStore struct {
	store.Store
	failOn string
}

func (f failingStore) Create(ctx context.Context, c string, data map[string]any) (store.Record, error) {
	if data["room"] == f.failOn {
		return store.Record{}, errors.New("disk full")
	}
	return f.Store.Create(ctx, c, data)
}

func TestService_ImportContinuesAfterCreateFailure(t *testing.T) {
	registerTestPanels(t)
	s := newTestService(t, Options{Local: failingStore{Store: store.NewMemory(), failOn: "B"}})

	res, err := s.Import(context.Background(), auth.RoleAdmin, "rooms", csvUpload("r.csv", "room\nA\nB\nC\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.FailedRows, 1)
	assert.Equal(t, "disk full", res.FailedRows[0].Reason)
	assert.Equal(t, 3, res.FailedRows[0].Line)
}

func TestService_ImportRejections(t *testing.T) {
	registerTestPanels(t)
	s := newTestService(t, Options{Read: csvimport.ReadOptions{MaxBytes: 16}})
	ctx := context.Background()

	_, err := s.Import(ctx, auth.RoleAdmin, "nope", csvUpload("x.csv", "a\n1\n"))
	assert.ErrorIs(t, err, ErrUnknownPanel)

	_, err = s.Import(ctx, auth.RoleStudent, "rooms", csvUpload("x.csv", "room\nA\n"))
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := s.Import(ctx, auth.RoleAdmin, "rooms", csvUpload("x.csv", "room,capacity\nA-101,40\nB-202,50\n"))
	assert.ErrorIs(t, err, csvimport.ErrFileTooLarge)
	assert.Nil(t, res)
	assert.Empty(t, s.Imports())
}

func TestService_ImportBusy(t *testing.T) {
	registerTestPanels(t)
	s := newTestService(t, Options{MaxConcurrent: 1, MaxWait: 10_000_000})

	require.True(t, s.limiter.TryAcquire())
	defer s.limiter.Release()

	_, err := s.Import(context.Background(), auth.RoleAdmin, "rooms", csvUpload("x.csv", "room\nA\n"))
	assert.ErrorIs(t, err, ErrTooManyImports)
	assert.Equal(t, "IMP001", MapError(err).Code)
}

func TestService_CreateListDelete(t *testing.T) {
	registerTestPanels(t)
	s := newTestService(t, Options{})
	ctx := context.Background()

	rec, err := s.Create(ctx, auth.RoleFaculty, "rooms", map[string]string{"ROOM": "C-3", "capacity": "12"})
	require.NoError(t, err)
	assert.Equal(t, "C-3", rec.Data["room"])

	_, err = s.Create(ctx, auth.RoleFaculty, "rooms", map[string]string{"room": "C-4", "capacity": "-1"})
	assert.Equal(t, "VAL002", MapError(err).Code)

	recs, err := s.List(ctx, auth.RoleFaculty, "rooms")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, s.Delete(ctx, auth.RoleFaculty, "rooms", rec.ID))
	assert.ErrorIs(t, s.Delete(ctx, auth.RoleFaculty, "rooms", rec.ID), store.ErrNotFound)
}

func TestService_TemplateAndPreview(t *testing.T) {
	registerTestPanels(t)
	s := newTestService(t, Options{})

	name, data, err := s.Template(auth.RoleAdmin, "rooms")
	require.NoError(t, err)
	assert.Equal(t, "template.csv", name)
	assert.Equal(t, "room,capacity\n", string(data))

	prev, err := s.Preview(context.Background(), auth.RoleAdmin, "rooms", csvUpload("p.csv", "CAPACITY,Room,Extra\n5,Z\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, prev.TotalRows)
	assert.Equal(t, []string{"room", "capacity"}, prev.Rows[0].Values.Keys())
	assert.Equal(t, "Z", prev.Rows[0].Values.Value("room"))
	assert.Equal(t, 2, prev.Rows[0].Line)

	recs, err := s.List(context.Background(), auth.RoleAdmin, "rooms")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestService_SyncedPanelsUseBackend(t *testing.T) {
	registerTestPanels(t)

	var posted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/timeslots", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		posted = append(posted, string(data))
		if strings.Contains(string(data), "Sun") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":"No classes on Sunday"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":`+fmt.Sprint(len(posted))+`}`)
	}))
	defer srv.Close()

	mem := store.NewMemory()
	s := newTestService(t, Options{Local: mem, Backend: api.New(srv.URL)})

	res, err := s.Import(context.Background(), auth.RoleAdmin, "slots", csvUpload("s.csv", "day\nMon\nSun\nTue\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.FailedRows, 1)
	assert.Equal(t, "No classes on Sunday", res.FailedRows[0].Reason)
	assert.Len(t, posted, 3)

	local, err := mem.List(context.Background(), "slots")
	require.NoError(t, err)
	assert.Empty(t, local)
}

func TestService_RequiresLocalStore(t *testing.T) {
	_, err := NewService(Options{})
	assert.Error(t, err)
}

func TestService_HistoryBounded(t *testing.T) {
	registerTestPanels(t)
	s := newTestService(t, Options{HistorySize: 2})

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		_, err := s.Import(context.Background(), auth.RoleAdmin, "rooms", csvUpload(name, "room\nX\n"))
		require.NoError(t, err)
	}

	history := s.Imports()
	require.Len(t, history, 2)
	assert.Equal(t, "c.csv", history[0].FileName)
	assert.Equal(t, "b.csv", history[1].FileName)
}
