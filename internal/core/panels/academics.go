package panels

import (
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

var CourseTypes = []string{"Major", "Minor", "Skill", "Ability"}

type Student struct {
	Name            string `json:"name" validate:"required"`
	RollNo          string `json:"rollNo" validate:"required"`
	Program         string `json:"program"`
	Electives       string `json:"electives"`
	EnrolledCredits int    `json:"enrolledCredits" validate:"gte=0"`
}

type Faculty struct {
	Name              string `json:"name" validate:"required"`
	Specialization    string `json:"specialization"`
	AvailabilitySlots string `json:"availabilitySlots"`
	MaxWorkload       int    `json:"maxWorkload" validate:"gte=0"`
	PreferredCourses  string `json:"preferredCourses"`
}

type Course struct {
	CourseCode     string  `json:"courseCode" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Type           string  `json:"type" validate:"oneof=Major Minor Skill Ability"`
	TheoryHours    float64 `json:"theoryHours" validate:"gte=0"`
	PracticalHours float64 `json:"practicalHours" validate:"gte=0"`
	Credits        int     `json:"credits" validate:"gte=0"`
	Fieldwork      string  `json:"fieldwork"`
}

func registerAcademics() {
	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:     "students",
			Label:   "Students",
			Group:   groupAcademics,
			Roles:   adminOnly,
			Headers: []string{"name", "rollNo", "program", "electives", "enrolledCredits"},
		},
		Build: buildStudent,
	})

	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:     "faculty",
			Label:   "Faculty",
			Group:   groupAcademics,
			Roles:   adminOnly,
			Headers: []string{"name", "specialization", "availabilitySlots", "maxWorkload", "preferredCourses"},
		},
		Build: buildFaculty,
	})

	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:     "courses",
			Label:   "Courses",
			Group:   groupAcademics,
			Roles:   adminOnly,
			Headers: []string{"courseCode", "name", "type", "theoryHours", "practicalHours", "credits", "fieldwork"},
		},
		Build: buildCourse,
	})
}

func buildStudent(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "name", "rollNo"); err != nil {
		return nil, err
	}
	credits, err := core.ParseInt("enrolledCredits", row.Value("enrolledCredits"))
	if err != nil {
		return nil, err
	}
	return Student{
		Name:            core.Text(row.Value("name")),
		RollNo:          core.Text(row.Value("rollNo")),
		Program:         core.Text(row.Value("program")),
		Electives:       core.Text(row.Value("electives")),
		EnrolledCredits: credits,
	}, nil
}

func buildFaculty(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "name"); err != nil {
		return nil, err
	}
	workload, err := core.ParseInt("maxWorkload", row.Value("maxWorkload"))
	if err != nil {
		return nil, err
	}
	return Faculty{
		Name:              core.Text(row.Value("name")),
		Specialization:    core.Text(row.Value("specialization")),
		AvailabilitySlots: core.Text(row.Value("availabilitySlots")),
		MaxWorkload:       workload,
		PreferredCourses:  core.Text(row.Value("preferredCourses")),
	}, nil
}

func buildCourse(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "courseCode", "name"); err != nil {
		return nil, err
	}
	theory, err := core.ParseFloat("theoryHours", row.Value("theoryHours"))
	if err != nil {
		return nil, err
	}
	practical, err := core.ParseFloat("practicalHours", row.Value("practicalHours"))
	if err != nil {
		return nil, err
	}
	credits, err := core.ParseInt("credits", row.Value("credits"))
	if err != nil {
		return nil, err
	}
	return Course{
		CourseCode:     core.Text(row.Value("courseCode")),
		Name:           core.Text(row.Value("name")),
		Type:           core.OneOf(row.Value("type"), CourseTypes, "Major"),
		TheoryHours:    theory,
		PracticalHours: practical,
		Credits:        credits,
		Fieldwork:      core.Text(row.Value("fieldwork")),
	}, nil
}
