package core

import (
	"errors"
	"slices"
	"time"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

var (
	// ErrSkipRow marks a row that lacks the fields a panel requires.
	ErrSkipRow = errors.New("row skipped")

	ErrUnknownPanel = errors.New("unknown panel")
	ErrForbidden    = errors.New("panel not available for this role")

	// ErrInvalidInput marks a request field that is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// PanelInfo describes a panel for listing and templates.
type PanelInfo struct {
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Group    string      `json:"group"`
	Roles    []auth.Role `json:"roles"`
	Headers  []string    `json:"headers"`
	Resource string      `json:"resource,omitempty"` // backend path, e.g. "/api/classrooms"
}

// AllowedFor reports whether role may use the panel.
func (p PanelInfo) AllowedFor(role auth.Role) bool {
	return slices.Contains(p.Roles, role)
}

// BuildFunc maps one normalized row to the payload stored for it.
// Returning an error wrapping ErrSkipRow drops the row.
type BuildFunc func(row csvimport.NormalizedRow) (any, error)

// PanelDefinition is everything needed to serve a panel.
type PanelDefinition struct {
	Info  PanelInfo
	Build BuildFunc
}

// FailedRow is a row that was not imported.
type FailedRow struct {
	Line   int               `json:"line"`
	Reason string            `json:"reason"`
	Data   map[string]string `json:"data"`
}

// ImportResult summarises one bulk import.
type ImportResult struct {
	ImportID   string        `json:"import_id"`
	Panel      string        `json:"panel"`
	FileName   string        `json:"file_name"`
	TotalRows  int           `json:"total_rows"`
	Created    int           `json:"created"`
	Skipped    int           `json:"skipped"`
	FailedRows []FailedRow   `json:"failed_rows"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// PreviewResult is a parsed and normalized file that has not been saved.
type PreviewResult struct {
	Panel     string       `json:"panel"`
	FileName  string       `json:"file_name"`
	Headers   []string     `json:"headers"`
	TotalRows int          `json:"total_rows"`
	Rows      []PreviewRow `json:"rows"`
}

// PreviewRow is one normalized row with its source line.
type PreviewRow struct {
	Line   int              `json:"line"`
	Values csvimport.Fields `json:"values"`
}
