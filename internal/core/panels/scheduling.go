package panels

import (
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

type Enrollment struct {
	StudentID int `json:"student_id" validate:"gt=0"`
	CourseID  int `json:"course_id" validate:"gt=0"`
}

type Disruption struct {
	CourseID           int    `json:"course_id" validate:"gt=0"`
	FacultyUnavailable int    `json:"faculty_unavailable" validate:"gt=0"`
	Reason             string `json:"reason"`
}

func registerScheduling() {
	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:      "enrollments",
			Label:    "Enrollments",
			Group:    groupScheduling,
			Roles:    adminStudent,
			Headers:  []string{"student_id", "course_id"},
			Resource: "/api/enrollments",
		},
		Build: buildEnrollment,
	})

	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:      "disruptions",
			Label:    "Disruptions",
			Group:    groupScheduling,
			Roles:    adminFaculty,
			Headers:  []string{"course_id", "faculty_unavailable", "reason"},
			Resource: "/api/disruptions",
		},
		Build: buildDisruption,
	})
}

func buildEnrollment(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "student_id", "course_id"); err != nil {
		return nil, err
	}
	student, err := core.ParseInt("student_id", row.Value("student_id"))
	if err != nil {
		return nil, err
	}
	course, err := core.ParseInt("course_id", row.Value("course_id"))
	if err != nil {
		return nil, err
	}
	return Enrollment{StudentID: student, CourseID: course}, nil
}

func buildDisruption(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "course_id", "faculty_unavailable"); err != nil {
		return nil, err
	}
	course, err := core.ParseInt("course_id", row.Value("course_id"))
	if err != nil {
		return nil, err
	}
	faculty, err := core.ParseInt("faculty_unavailable", row.Value("faculty_unavailable"))
	if err != nil {
		return nil, err
	}
	return Disruption{
		CourseID:           course,
		FacultyUnavailable: faculty,
		Reason:             core.Text(row.Value("reason")),
	}, nil
}
