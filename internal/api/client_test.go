package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, h http.HandlerFunc) *Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewBackend(New(srv.URL+"/", WithHeader("X-Client", "test")))
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 400, `{"detail":"Student not found"}`, "Student not found"},
		{"message fallback", 422, `{"message":"bad payload"}`, "bad payload"},
		{"empty detail falls through", 409, `{"detail":"","message":"conflict here"}`, "conflict here"},
		{"structured detail encoded", 422, `{"detail":[{"loc":["body"],"msg":"x"}]}`, `[{"loc":["body"],"msg":"x"}]`},
		{"status text", 500, `oops`, "Internal Server Error"},
		{"empty body", 503, ``, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := b.Students.List(context.Background())
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, "/api/students", apiErr.Path)
		})
	}
}

func TestClient_ErrorIs(t *testing.T) {
	assert.ErrorIs(t, &Error{Status: 404}, ErrNotFound)
	assert.ErrorIs(t, &Error{Status: 403}, ErrUnauthorized)
	assert.NotErrorIs(t, &Error{Status: 500}, ErrNotFound)
}

func TestClient_NoContent(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ok, err := b.Students.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResource_CRUD(t *testing.T) {
	var gotMethod, gotPath, gotHeader, gotType string
	var gotBody map[string]any

	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotHeader = r.Header.Get("X-Client")
		gotType = r.Header.Get("Content-Type")
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"id":7,"day":"Mon","start_time":"09:00","end_time":"10:00"}`)
		case http.MethodDelete:
			_, _ = io.WriteString(w, `{"deleted":true}`)
		default:
			_, _ = io.WriteString(w, `{"id":7,"day":"Tue","start_time":"09:00","end_time":"10:00"}`)
		}
	})
	ctx := context.Background()

	created, err := b.TimeSlots.Create(ctx, TimeSlotCreate{Day: "Tue", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/timeslots", gotPath)
	assert.Equal(t, "test", gotHeader)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "Tue", gotBody["day"])
	assert.Equal(t, 7, created.ID)

	got, err := b.TimeSlots.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "/api/timeslots/7", gotPath)
	assert.Equal(t, "Mon", got.Day)

	_, err = b.TimeSlots.Update(ctx, 7, TimeSlotCreate{Day: "Tue"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)

	deleted, err := b.TimeSlots.Delete(ctx, 7)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestOptimizer_ReassignQuery(t *testing.T) {
	var query map[string][]string
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimizer/reassign", r.URL.Path)
		query = r.URL.Query()
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	out, err := b.Optimizer.Reassign(context.Background(), 4, 9, "sick leave & travel")
	require.NoError(t, err)
	assert.JSONEq(t, `{"candidates":[]}`, string(out))
	assert.Equal(t, []string{"4"}, query["course_id"])
	assert.Equal(t, []string{"9"}, query["faculty_unavailable"])
	assert.Equal(t, []string{"sick leave & travel"}, query["reason"])
}

func TestRegistration_ValidateBody(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12", r.URL.Query().Get("student_id"))
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `[1,2]`, string(data))
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	out, err := b.Registration.Validate(context.Background(), 12, []int{1, 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))
}

func TestAssistant_Chat(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u-1", r.Header.Get("X-User-Id"))
		assert.Equal(t, "faculty", r.Header.Get("X-User-Role"))
		_, _ = io.WriteString(w, `{"reply":"Room A-101 is free"}`)
	})

	reply, err := b.Assistant.Chat(context.Background(), "which rooms are free?", "u-1", "faculty")
	require.NoError(t, err)
	assert.Equal(t, "Room A-101 is free", reply.Text())
}

func TestChatReply_Text(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"final_answer":"a","reply":"b"}`, "a"},
		{`{"final_answer":"","reply":"b"}`, "b"},
		{`{"message":"c"}`, "c"},
		{`"plain"`, "plain"},
		{`{"other":1}`, `{"other":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChatReply{Raw: json.RawMessage(tt.raw)}.Text(), tt.raw)
	}
}
