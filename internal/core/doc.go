// Package core holds the panel business logic shared by the web server and
// the csvtool CLI.
//
// # Panels
//
// Each entity managed from a dashboard (students, faculty, courses, rooms and
// the backend-synced collections) is a panel registered at init time with
// [Register]. A [PanelDefinition] carries the template headers used for bulk
// upload, the roles allowed to see it, an optional backend resource path and a
// [BuildFunc] that turns one normalized row into a typed payload:
//
//	core.Register(core.PanelDefinition{
//	    Info: core.PanelInfo{
//	        Key:     "timeslots",
//	        Label:   "Time Slots",
//	        Headers: []string{"day", "start_time", "end_time"},
//	        Roles:   []auth.Role{auth.RoleAdmin, auth.RoleFaculty},
//	    },
//	    Build: buildTimeSlot,
//	})
//
// # Bulk import
//
// [Service.Import] reads one uploaded file through the csvimport adapter,
// builds every row and creates the records one at a time in file order. A row
// that fails to build or to save is reported as a [FailedRow] and the import
// carries on with the next row.
//
// # Error codes
//
// [MapError] turns any error into a [UserMessage] with a short code that users
// can quote:
//
//   - FILE001-FILE007: upload file problems (size, format, encoding)
//   - VAL001-VAL004: row and form validation
//   - IMP001-IMP003: import capacity and cancellation
//   - PNL001-PNL002: unknown or forbidden panels
//   - AUTH001-AUTH002: login and session
//   - BE001-BE003: timetable backend failures
//   - STO001-STO003: record storage
//   - RATE001: request throttling
//   - ERR000: anything else
package core
