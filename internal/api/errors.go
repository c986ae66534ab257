package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrNotFound     = errors.New("backend: not found")
	ErrUnauthorized = errors.New("backend: unauthorized")
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend rejected %s %s (%d): %s", e.Method, e.Path, e.Status, e.Message)
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized by status.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

func newError(resp *http.Response, method, path string) *Error {
	e := &Error{
		Status: resp.StatusCode,
		Method: method,
		Path:   path,
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body map[string]any
	if json.Unmarshal(data, &body) == nil {
		if msg, ok := messageField(body["detail"]); ok {
			e.Message = msg
			return e
		}
		if msg, ok := messageField(body["message"]); ok {
			e.Message = msg
			return e
		}
	}

	e.Message = http.StatusText(resp.StatusCode)
	return e
}

// messageField renders a detail/message value; empty values do not count.
func messageField(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool:
		if !val {
			return "", false
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}
