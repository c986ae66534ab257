package web

// handlers_common.go holds helpers shared by the handlers.

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/timetable-admin/internal/core"
)

// maxFormBytes caps non-upload request bodies.
const maxFormBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// formValues reads a JSON object or a urlencoded form into flat text
// values. JSON numbers keep their shortest form, arrays become comma lists,
// and nested objects are re-encoded.
func formValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: body is not a JSON object", core.ErrInvalidInput)
		}
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			out[k] = textValue(v)
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = textValue(e)
		}
		return strings.Join(parts, ",")
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

// intField parses a required positive integer field.
func intField(values map[string]string, name string) (int, error) {
	s := strings.TrimSpace(values[name])
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", core.ErrInvalidInput, name)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive whole number", core.ErrInvalidInput, name)
	}
	return n, nil
}

// intList parses a comma separated list of positive integers.
func intList(values map[string]string, name string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(values[name], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s must list positive whole numbers", core.ErrInvalidInput, name)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s is required", core.ErrInvalidInput, name)
	}
	return out, nil
}

// ImportResultResponse is the JSON form of an import result.
type ImportResultResponse struct {
	ImportID   string            `json:"import_id"`
	Panel      string            `json:"panel"`
	FileName   string            `json:"file_name"`
	TotalRows  int               `json:"total_rows"`
	Created    int               `json:"created"`
	Skipped    int               `json:"skipped"`
	FailedRows []core.FailedRow  `json:"failed_rows,omitempty"`
	Duration   string            `json:"duration"`
	Error      *core.UserMessage `json:"error,omitempty"`
}

// toResponse converts an ImportResult; err is the import's terminal error
// for runs that stopped early.
func toResponse(res core.ImportResult, err error) ImportResultResponse {
	out := ImportResultResponse{
		ImportID:   res.ImportID,
		Panel:      res.Panel,
		FileName:   res.FileName,
		TotalRows:  res.TotalRows,
		Created:    res.Created,
		Skipped:    res.Skipped,
		FailedRows: res.FailedRows,
		Duration:   res.Duration.String(),
	}
	if err != nil {
		msg := core.MapError(err)
		out.Error = &msg
	}
	return out
}
