// Package views renders the server-side pages.
//
//go:generate templ generate
package views

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
)

// LoginData fills the login page.
type LoginData struct {
	Email string
	Role  string
	Error string
	Code  string
}

// roleOptions is the order of the role select on the login page.
var roleOptions = []string{"student", "faculty", "admin"}

// PanelCard is one panel on a dashboard.
type PanelCard struct {
	Info    core.PanelInfo
	Records int
	Synced  bool // records live in the backend
}

// Where names the store holding the card's records.
func (p PanelCard) Where() string {
	if p.Synced {
		return "backend"
	}
	return "local"
}

// PanelGroup groups cards under a heading.
type PanelGroup struct {
	Name   string
	Panels []PanelCard
}

// DashboardData fills a role dashboard.
type DashboardData struct {
	Session auth.Session
	Groups  []PanelGroup
	Imports []core.ImportResult
}

func dashboardTitle(r auth.Role) string {
	switch auth.Dashboard(r) {
	case "admin":
		return "Admin dashboard"
	case "faculty":
		return "Faculty dashboard"
	default:
		return "Student dashboard"
	}
}

func panelURL(key, action string) templ.SafeURL {
	return templ.URL("/api/panels/" + key + "/" + action)
}
