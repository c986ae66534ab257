package panels

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/store"
)

func row(template []string, values map[string]string) csvimport.NormalizedRow {
	return csvimport.NormalizeMap(values, template)
}

func panel(t *testing.T, key string) core.PanelDefinition {
	t.Helper()
	def, ok := core.Get(key)
	require.True(t, ok, "panel %s not registered", key)
	return def
}

func TestRegisteredPanels(t *testing.T) {
	assert.Equal(t, 8, core.Count())

	keys := func(role auth.Role) []string {
		var out []string
		for _, def := range core.ForRole(role) {
			out = append(out, def.Info.Key)
		}
		return out
	}

	assert.Len(t, keys(auth.RoleAdmin), 8)
	assert.ElementsMatch(t, []string{"classrooms", "timeslots", "disruptions"}, keys(auth.RoleFaculty))
	assert.ElementsMatch(t, []string{"enrollments"}, keys(auth.RoleStudent))

	assert.Equal(t, []string{"name", "rollNo", "program", "electives", "enrolledCredits"}, panel(t, "students").Info.Headers)
	assert.Equal(t, "/api/classrooms", panel(t, "classrooms").Info.Resource)
	assert.Empty(t, panel(t, "infrastructure").Info.Resource)
}

func TestBuildStudent(t *testing.T) {
	def := panel(t, "students")

	got, err := def.Build(row(def.Info.Headers, map[string]string{"name": "Asha", "rollNo": "R1", "enrolledCredits": "18"}))
	require.NoError(t, err)
	assert.Equal(t, Student{Name: "Asha", RollNo: "R1", EnrolledCredits: 18}, got)

	_, err = def.Build(row(def.Info.Headers, map[string]string{"name": "Asha"}))
	assert.ErrorIs(t, err, core.ErrSkipRow)

	_, err = def.Build(row(def.Info.Headers, map[string]string{"name": "Asha", "rollNo": "R1", "enrolledCredits": "many"}))
	assert.ErrorIs(t, err, core.ErrInvalidNumber)
}

func TestBuildCourse_TypeFallback(t *testing.T) {
	def := panel(t, "courses")

	tests := []struct {
		in   string
		want string
	}{
		{"Minor", "Minor"},
		{"Ability", "Ability"},
		{"elective", "Major"},
		{"", "Major"},
	}
	for _, tt := range tests {
		got, err := def.Build(row(def.Info.Headers, map[string]string{"courseCode": "CS1", "name": "Intro", "type": tt.in, "theoryHours": "2.5"}))
		require.NoError(t, err)
		c := got.(Course)
		assert.Equal(t, tt.want, c.Type, tt.in)
		assert.Equal(t, 2.5, c.TheoryHours)
	}

	_, err := def.Build(row(def.Info.Headers, map[string]string{"name": "Intro"}))
	assert.ErrorIs(t, err, core.ErrSkipRow)
}

func TestRequireFields_NamesEveryMissingField(t *testing.T) {
	def := panel(t, "courses")

	_, err := def.Build(row(def.Info.Headers, map[string]string{"type": "Minor"}))
	require.ErrorIs(t, err, core.ErrSkipRow)
	assert.ErrorContains(t, err, "courseCode, name")
}

func TestBuildInfrastructure_Enums(t *testing.T) {
	def := panel(t, "infrastructure")

	got, err := def.Build(row(def.Info.Headers, map[string]string{"room": "Lab 1", "type": "Lab", "teachingPracticeCenter": "ITEP", "capacity": "30"}))
	require.NoError(t, err)
	assert.Equal(t, Infrastructure{Room: "Lab 1", Capacity: 30, Type: "Lab", TeachingPracticeCenter: "ITEP"}, got)

	got, err = def.Build(row(def.Info.Headers, map[string]string{"room": "R2", "type": "Hall", "teachingPracticeCenter": "PhD"}))
	require.NoError(t, err)
	assert.Equal(t, "Classroom", got.(Infrastructure).Type)
	assert.Equal(t, "", got.(Infrastructure).TeachingPracticeCenter)
}

func TestBuildClassroom_OptionalResources(t *testing.T) {
	def := panel(t, "classrooms")

	got, err := def.Build(row(def.Info.Headers, map[string]string{"room_number": "A-1", "capacity": "40"}))
	require.NoError(t, err)
	assert.Nil(t, got.(Classroom).Resources)

	got, err = def.Build(row(def.Info.Headers, map[string]string{"room_number": "A-1", "resources": "projector"}))
	require.NoError(t, err)
	require.NotNil(t, got.(Classroom).Resources)
	assert.Equal(t, "projector", *got.(Classroom).Resources)
}

func TestBuildEnrollment(t *testing.T) {
	def := panel(t, "enrollments")

	got, err := def.Build(row(def.Info.Headers, map[string]string{"student_id": "3", "course_id": "7"}))
	require.NoError(t, err)
	assert.Equal(t, Enrollment{StudentID: 3, CourseID: 7}, got)

	_, err = def.Build(row(def.Info.Headers, map[string]string{"student_id": "3"}))
	assert.True(t, errors.Is(err, core.ErrSkipRow))
}

func TestImportThroughService(t *testing.T) {
	mem := store.NewMemory()
	svc, err := core.NewService(core.Options{Local: mem})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"Room Number,Capacity,Building",
		"A-101,40,Main",
		"A-102,0,Main",
		",20,Annex",
		"A-103,-5,Main",
	}, "\n")

	res, err := svc.Import(context.Background(), auth.RoleFaculty, "classrooms", csvimport.Upload{Name: "rooms.csv", Body: strings.NewReader(csv)})
	require.NoError(t, err)

	// "Room Number" does not match the room_number header, so every row lacks it
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 4, res.Skipped)

	csv = strings.Replace(csv, "Room Number", "room_number", 1)
	res, err = svc.Import(context.Background(), auth.RoleFaculty, "classrooms", csvimport.Upload{Name: "rooms.csv", Body: strings.NewReader(csv)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.FailedRows, 2)
	assert.Equal(t, 4, res.FailedRows[0].Line)
	assert.Equal(t, 5, res.FailedRows[1].Line)
	assert.Contains(t, res.FailedRows[1].Reason, "capacity: must be at least 0")

	recs, err := mem.List(context.Background(), "classrooms")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A-101", recs[0].Data["room_number"])
	assert.NotContains(t, recs[0].Data, "resources")
}

func TestTimeSlotValidation(t *testing.T) {
	svc, err := core.NewService(core.Options{Local: store.NewMemory()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, auth.RoleAdmin, "timeslots", map[string]string{"day": "Mon", "start_time": "09:00", "end_time": "10:00"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, auth.RoleAdmin, "timeslots", map[string]string{"day": "Mon", "start_time": "9am", "end_time": "10:00"})
	assert.Equal(t, "VAL002", core.MapError(err).Code)

	_, err = svc.Create(ctx, auth.RoleStudent, "timeslots", map[string]string{"day": "Mon"})
	assert.ErrorIs(t, err, core.ErrForbidden)
}
