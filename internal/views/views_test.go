package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestErrorAlert_Escapes(t *testing.T) {
	out := render(t, ErrorAlert(`<script>alert(1)</script>`, "Try again", "VAL002"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "(VAL002)")
	assert.Contains(t, out, `<p class="action">Try again</p>`)

	out = render(t, ErrorAlert("plain", "", ""))
	assert.NotContains(t, out, "action")
	assert.NotContains(t, out, "code")
}

func TestLogin(t *testing.T) {
	out := render(t, Login(LoginData{Email: `a"b@x.io`, Role: "faculty", Error: "Invalid email or password", Code: "AUTH001"}))
	assert.Contains(t, out, `action="/login"`)
	assert.Contains(t, out, `action="/signup"`)
	assert.Contains(t, out, `value="a&#34;b@x.io"`)
	assert.Contains(t, out, `<option value="faculty" selected>`)
	assert.Contains(t, out, "AUTH001")
	assert.Equal(t, 2, strings.Count(out, `value="a&#34;b@x.io"`), "both forms keep the email")
	assert.Equal(t, 1, strings.Count(out, `role="alert"`))
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
}

func TestDashboard_PerRole(t *testing.T) {
	groups := []PanelGroup{{
		Name: "Facilities",
		Panels: []PanelCard{{
			Info:    core.PanelInfo{Key: "classrooms", Label: "Classrooms", Headers: []string{"room_number", "capacity"}},
			Records: 3,
			Synced:  true,
		}},
	}}

	tests := []struct {
		role    auth.Role
		want    string
		notWant string
	}{
		{auth.RoleAdmin, "/api/optimizer/approve", "/api/registration/validate"},
		{auth.RoleFaculty, "/api/optimizer/reassign", "/api/optimizer/approve"},
		{auth.RoleStudent, "/api/registration/validate", "/api/optimizer/reassign"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			out := render(t, Dashboard(DashboardData{
				Session: auth.Session{Email: "u@x.io", Role: tt.role},
				Groups:  groups,
			}))
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, tt.notWant)
			assert.Contains(t, out, "3 records (backend)")
			assert.Contains(t, out, "<code>room_number,capacity</code>")
			assert.Contains(t, out, "/api/assistant/chat")
			assert.Contains(t, out, `<article class="panel" id="panel-classrooms">`)
			assert.Contains(t, out, `<a href="/api/panels/classrooms/template">`)
			assert.Contains(t, out, `action="/api/panels/classrooms/import"`)
			assert.Contains(t, out, `formaction="/api/panels/classrooms/preview"`)
		})
	}
}

func TestDashboard_AdminImports(t *testing.T) {
	started := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	out := render(t, Dashboard(DashboardData{
		Session: auth.Session{Role: auth.RoleAdmin},
		Imports: []core.ImportResult{{FileName: "rooms.csv", Panel: "classrooms", TotalRows: 5, Created: 4, Skipped: 1, StartedAt: started}},
	}))
	assert.Contains(t, out, "<td>rooms.csv</td>")
	assert.Contains(t, out, "2024-06-01 09:30")
	assert.NotContains(t, out, "No imports yet.")
}
