// Package panels registers the dashboard panels with core.
//
// Import it for its side effects:
//
//	import _ "github.com/JonMunkholm/timetable-admin/internal/core/panels"
package panels

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

const (
	groupAcademics  = "Academics"
	groupFacilities = "Facilities"
	groupScheduling = "Scheduling"
)

var (
	adminOnly    = []auth.Role{auth.RoleAdmin}
	adminFaculty = []auth.Role{auth.RoleAdmin, auth.RoleFaculty}
	adminStudent = []auth.Role{auth.RoleAdmin, auth.RoleStudent}
)

// requireFields returns ErrSkipRow naming every empty field.
func requireFields(row csvimport.NormalizedRow, names ...string) error {
	var missing []string
	for _, n := range names {
		if strings.TrimSpace(row.Value(n)) == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required field %s is empty", core.ErrSkipRow, strings.Join(missing, ", "))
	}
	return nil
}

func init() {
	registerAcademics()
	registerFacilities()
	registerScheduling()
}
