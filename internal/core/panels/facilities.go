package panels

import (
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

var (
	RoomTypes       = []string{"Classroom", "Lab"}
	PracticeCenters = []string{"B.Ed.", "M.Ed.", "ITEP"}
)

type Infrastructure struct {
	Room                   string `json:"room" validate:"required"`
	Capacity               int    `json:"capacity" validate:"gte=0"`
	Type                   string `json:"type" validate:"oneof=Classroom Lab"`
	LabType                string `json:"labType"`
	Availability           string `json:"availability"`
	TeachingPracticeCenter string `json:"teachingPracticeCenter" validate:"omitempty,oneof=B.Ed. M.Ed. ITEP"`
}

// Classroom mirrors the backend's classroom schema.
type Classroom struct {
	RoomNumber string  `json:"room_number" validate:"required"`
	Capacity   int     `json:"capacity" validate:"gte=0"`
	Building   string  `json:"building"`
	Resources  *string `json:"resources,omitempty"`
}

// TimeSlot mirrors the backend's time slot schema. Times are HH:MM.
type TimeSlot struct {
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

func registerFacilities() {
	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:     "infrastructure",
			Label:   "Infrastructure",
			Group:   groupFacilities,
			Roles:   adminOnly,
			Headers: []string{"room", "capacity", "type", "labType", "availability", "teachingPracticeCenter"},
		},
		Build: buildInfrastructure,
	})

	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:      "classrooms",
			Label:    "Classrooms",
			Group:    groupFacilities,
			Roles:    adminFaculty,
			Headers:  []string{"room_number", "capacity", "building", "resources"},
			Resource: "/api/classrooms",
		},
		Build: buildClassroom,
	})

	core.Register(core.PanelDefinition{
		Info: core.PanelInfo{
			Key:      "timeslots",
			Label:    "Time Slots",
			Group:    groupFacilities,
			Roles:    adminFaculty,
			Headers:  []string{"day", "start_time", "end_time"},
			Resource: "/api/timeslots",
		},
		Build: buildTimeSlot,
	})
}

func buildInfrastructure(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "room"); err != nil {
		return nil, err
	}
	capacity, err := core.ParseInt("capacity", row.Value("capacity"))
	if err != nil {
		return nil, err
	}
	return Infrastructure{
		Room:                   core.Text(row.Value("room")),
		Capacity:               capacity,
		Type:                   core.OneOf(row.Value("type"), RoomTypes, "Classroom"),
		LabType:                core.Text(row.Value("labType")),
		Availability:           core.Text(row.Value("availability")),
		TeachingPracticeCenter: core.OneOf(row.Value("teachingPracticeCenter"), PracticeCenters, ""),
	}, nil
}

func buildClassroom(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "room_number"); err != nil {
		return nil, err
	}
	capacity, err := core.ParseInt("capacity", row.Value("capacity"))
	if err != nil {
		return nil, err
	}
	c := Classroom{
		RoomNumber: core.Text(row.Value("room_number")),
		Capacity:   capacity,
		Building:   core.Text(row.Value("building")),
	}
	if res := core.Text(row.Value("resources")); res != "" {
		c.Resources = &res
	}
	return c, nil
}

func buildTimeSlot(row csvimport.NormalizedRow) (any, error) {
	if err := requireFields(row, "day", "start_time", "end_time"); err != nil {
		return nil, err
	}
	return TimeSlot{
		Day:       core.Text(row.Value("day")),
		StartTime: core.Text(row.Value("start_time")),
		EndTime:   core.Text(row.Value("end_time")),
	}, nil
}
