package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/logging"
	"github.com/JonMunkholm/timetable-admin/internal/store"
	"github.com/JonMunkholm/timetable-admin/internal/validation"
)

// DefaultHistorySize is how many import results are kept for listing.
const DefaultHistorySize = 50

// Options configures a Service.
type Options struct {
	// Local stores every panel without a backend resource, and all panels
	// when Backend is nil.
	Local store.Store

	// Backend, when set, receives records of panels that name a resource.
	Backend *api.Client

	Read          csvimport.ReadOptions
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration // per import; zero means no limit
	HistorySize   int
}

// Service runs panel CRUD and bulk imports.
type Service struct {
	local    store.Store
	remote   store.Store
	adapter  *csvimport.Adapter
	limiter  *ImportLimiter
	validate *validator.Validate
	timeout  time.Duration
	now      func() time.Time

	mu          sync.Mutex
	history     []ImportResult
	historySize int
}

// NewService wires a Service. Panels must be registered beforehand so the
// backend resource map can be built.
func NewService(opts Options) (*Service, error) {
	if opts.Local == nil {
		return nil, errors.New("core: local store is required")
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}

	s := &Service{
		local:       opts.Local,
		adapter:     csvimport.NewAdapter(opts.Read),
		limiter:     NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		validate:    validation.New(),
		timeout:     opts.Timeout,
		now:         time.Now,
		historySize: opts.HistorySize,
	}

	if opts.Backend != nil {
		paths := make(map[string]string)
		for _, def := range All() {
			if def.Info.Resource != "" {
				paths[def.Info.Key] = def.Info.Resource
			}
		}
		s.remote = store.NewRemote(opts.Backend, paths)
	}

	return s, nil
}

// Panels lists the panels a role may use.
func (s *Service) Panels(role auth.Role) []PanelInfo {
	defs := ForRole(role)
	infos := make([]PanelInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Panel returns a panel definition if role may use it.
func (s *Service) Panel(role auth.Role, key string) (PanelDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return PanelDefinition{}, fmt.Errorf("%w: %s", ErrUnknownPanel, key)
	}
	if !def.Info.AllowedFor(role) {
		return PanelDefinition{}, fmt.Errorf("%w: %s", ErrForbidden, key)
	}
	return def, nil
}

// Synced reports whether a panel's records go to the backend.
func (s *Service) Synced(def PanelDefinition) bool {
	return s.remote != nil && def.Info.Resource != ""
}

func (s *Service) storeFor(def PanelDefinition) store.Store {
	if s.Synced(def) {
		return s.remote
	}
	return s.local
}

// List returns a panel's records in creation order.
func (s *Service) List(ctx context.Context, role auth.Role, key string) ([]store.Record, error) {
	def, err := s.Panel(role, key)
	if err != nil {
		return nil, err
	}
	return s.storeFor(def).List(ctx, key)
}

// Create adds one record from form values keyed by (any casing of) the
// panel's headers.
func (s *Service) Create(ctx context.Context, role auth.Role, key string, values map[string]string) (store.Record, error) {
	def, err := s.Panel(role, key)
	if err != nil {
		return store.Record{}, err
	}

	data, err := s.buildRecord(def, csvimport.NormalizeMap(values, def.Info.Headers))
	if err != nil {
		return store.Record{}, err
	}

	rec, err := s.storeFor(def).Create(ctx, key, data)
	if err != nil {
		return store.Record{}, err
	}

	logging.WithFields(ctx, "panel", key, "record_id", rec.ID, "actor", actorFromContext(ctx)).
		Info("record created")
	return rec, nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, role auth.Role, key, id string) error {
	def, err := s.Panel(role, key)
	if err != nil {
		return err
	}
	if err := s.storeFor(def).Delete(ctx, key, id); err != nil {
		return err
	}

	logging.WithFields(ctx, "panel", key, "record_id", id, "actor", actorFromContext(ctx)).
		Info("record deleted")
	return nil
}

// Template returns the downloadable header-only CSV for a panel.
func (s *Service) Template(role auth.Role, key string) (string, []byte, error) {
	def, err := s.Panel(role, key)
	if err != nil {
		return "", nil, err
	}
	name, data := s.adapter.TemplateFile(def.Info.Headers)
	return name, data, nil
}

// buildRecord runs the panel's Build, validates the payload and flattens it
// to the JSON object that is stored.
func (s *Service) buildRecord(def PanelDefinition, row csvimport.NormalizedRow) (map[string]any, error) {
	payload, err := def.Build(row)
	if err != nil {
		return nil, err
	}
	if isStruct(payload) {
		if err := s.validate.Struct(payload); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", def.Info.Key, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", def.Info.Key, err)
	}
	return data, nil
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for running imports to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Imports returns recent import results, newest first.
func (s *Service) Imports() []ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ImportResult, len(s.history))
	for i, r := range s.history {
		out[len(s.history)-1-i] = r
	}
	return out
}

func (s *Service) remember(res ImportResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, res)
	if over := len(s.history) - s.historySize; over > 0 {
		s.history = append([]ImportResult(nil), s.history[over:]...)
	}
}
