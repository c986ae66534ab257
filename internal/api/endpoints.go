package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type StudentCreate struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Email      string `json:"email"`
	Year       int    `json:"year"`
	Branch     string `json:"branch"`
}

type StudentOut struct {
	ID int `json:"id"`
	StudentCreate
}

type FacultyCreate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Expertise   string `json:"expertise"`
	WorkloadCap int    `json:"workload_cap"`
	Available   bool   `json:"available"`
}

type FacultyOut struct {
	ID              int `json:"id"`
	CurrentWorkload int `json:"current_workload"`
	FacultyCreate
}

type TimeSlotCreate struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type TimeSlotOut struct {
	ID int `json:"id"`
	TimeSlotCreate
}

type ClassroomCreate struct {
	RoomNumber string  `json:"room_number"`
	Capacity   int     `json:"capacity"`
	Building   string  `json:"building"`
	Resources  *string `json:"resources,omitempty"`
}

type ClassroomOut struct {
	ID int `json:"id"`
	ClassroomCreate
}

type CourseCreate struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	Semester    int    `json:"semester"`
	Mandatory   bool   `json:"mandatory"`
	FacultyID   int    `json:"faculty_id"`
	TimeSlotID  int    `json:"timeslot_id"`
	ClassroomID int    `json:"classroom_id"`
	MaxSeats    int    `json:"max_seats"`
}

type CourseOut struct {
	ID int `json:"id"`
	CourseCreate
}

type EnrollmentCreate struct {
	StudentID int `json:"student_id"`
	CourseID  int `json:"course_id"`
}

type EnrollmentOut struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	EnrollmentCreate
}

type DisruptionCreate struct {
	CourseID           int    `json:"course_id"`
	FacultyUnavailable int    `json:"faculty_unavailable"`
	Reason             string `json:"reason"`
}

type DisruptionOut struct {
	ID         int     `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Status     string  `json:"status"`
	ResolvedBy *string `json:"resolved_by,omitempty"`
	DisruptionCreate
}

type OptimizationResultCreate struct {
	DisruptionID       int     `json:"disruption_id"`
	CandidateFacultyID int     `json:"candidate_faculty_id"`
	Score              float64 `json:"score"`
	Rank               string  `json:"rank"`
	Approved           bool    `json:"approved"`
}

type OptimizationResultOut struct {
	ID int `json:"id"`
	OptimizationResultCreate
}

// Deleted is the backend's response to a DELETE.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

// Resource is a CRUD collection rooted at a path such as "/api/students".
type Resource[In, Out any] struct {
	c    *Client
	path string
}

// NewResource binds a collection path to a client.
func NewResource[In, Out any](c *Client, path string) Resource[In, Out] {
	return Resource[In, Out]{c: c, path: path}
}

// Path returns the collection path.
func (r Resource[In, Out]) Path() string {
	return r.path
}

func (r Resource[In, Out]) itemPath(id int) string {
	return r.path + "/" + strconv.Itoa(id)
}

func (r Resource[In, Out]) List(ctx context.Context) ([]Out, error) {
	var out []Out
	if err := r.c.Get(ctx, r.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[In, Out]) Create(ctx context.Context, in In) (Out, error) {
	var out Out
	err := r.c.Post(ctx, r.path, in, &out)
	return out, err
}

func (r Resource[In, Out]) Get(ctx context.Context, id int) (Out, error) {
	var out Out
	err := r.c.Get(ctx, r.itemPath(id), &out)
	return out, err
}

func (r Resource[In, Out]) Update(ctx context.Context, id int, in In) (Out, error) {
	var out Out
	err := r.c.Put(ctx, r.itemPath(id), in, &out)
	return out, err
}

func (r Resource[In, Out]) Delete(ctx context.Context, id int) (bool, error) {
	var out Deleted
	if err := r.c.Delete(ctx, r.itemPath(id), &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

// Enrollments cannot be updated, so the resource hides Update.
type Enrollments struct {
	r Resource[EnrollmentCreate, EnrollmentOut]
}

func (e Enrollments) Path() string { return e.r.Path() }

func (e Enrollments) List(ctx context.Context) ([]EnrollmentOut, error) { return e.r.List(ctx) }

func (e Enrollments) Create(ctx context.Context, in EnrollmentCreate) (EnrollmentOut, error) {
	return e.r.Create(ctx, in)
}

func (e Enrollments) Get(ctx context.Context, id int) (EnrollmentOut, error) { return e.r.Get(ctx, id) }

func (e Enrollments) Delete(ctx context.Context, id int) (bool, error) { return e.r.Delete(ctx, id) }

// Registration wraps the course registration endpoints.
type Registration struct {
	c *Client
}

// Validate checks whether a student may register for the given courses.
func (r Registration) Validate(ctx context.Context, studentID int, courseIDs []int) (json.RawMessage, error) {
	if courseIDs == nil {
		courseIDs = []int{}
	}
	q := url.Values{}
	q.Set("student_id", strconv.Itoa(studentID))

	var out json.RawMessage
	err := r.c.Post(ctx, "/registration/validate?"+q.Encode(), courseIDs, &out)
	return out, err
}

// Enroll registers a student for one course.
func (r Registration) Enroll(ctx context.Context, studentID, courseID int) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.c.Post(ctx, "/registration/enroll", EnrollmentCreate{StudentID: studentID, CourseID: courseID}, &out)
	return out, err
}

// Optimizer wraps the faculty reassignment endpoints.
type Optimizer struct {
	c *Client
}

// Reassign asks the backend to rank replacement faculty for a course.
func (o Optimizer) Reassign(ctx context.Context, courseID, facultyUnavailable int, reason string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("course_id", strconv.Itoa(courseID))
	q.Set("faculty_unavailable", strconv.Itoa(facultyUnavailable))
	q.Set("reason", reason)

	var out json.RawMessage
	err := o.c.Post(ctx, "/optimizer/reassign?"+q.Encode(), nil, &out)
	return out, err
}

// ApproveRequest is the body of an approval.
type ApproveRequest struct {
	CourseID     int    `json:"course_id"`
	NewFacultyID int    `json:"new_faculty_id"`
	AdminName    string `json:"admin_name,omitempty"`
}

// Approve confirms a replacement faculty for a course.
func (o Optimizer) Approve(ctx context.Context, courseID, newFacultyID int, adminName string) (json.RawMessage, error) {
	var out json.RawMessage
	err := o.c.Post(ctx, "/optimizer/approve", ApproveRequest{
		CourseID:     courseID,
		NewFacultyID: newFacultyID,
		AdminName:    adminName,
	}, &out)
	return out, err
}

// Assistant wraps the chat endpoint.
type Assistant struct {
	c *Client
}

// ChatReply is the assistant's raw response.
type ChatReply struct {
	Raw json.RawMessage
}

// Text returns final_answer, reply or message, whichever is first non-empty,
// and otherwise the raw JSON.
func (r ChatReply) Text() string {
	var fields map[string]any
	if json.Unmarshal(r.Raw, &fields) == nil {
		for _, key := range []string{"final_answer", "reply", "message"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
	}
	var s string
	if json.Unmarshal(r.Raw, &s) == nil {
		return s
	}
	return string(r.Raw)
}

// Chat sends one message on behalf of a user.
func (a Assistant) Chat(ctx context.Context, text, userID, role string) (ChatReply, error) {
	var raw json.RawMessage
	err := a.c.Post(ctx, "/assistant/chat", map[string]string{"text": text}, &raw,
		WithRequestHeader("X-User-Id", userID),
		WithRequestHeader("X-User-Role", role),
	)
	if err != nil {
		return ChatReply{}, fmt.Errorf("assistant chat: %w", err)
	}
	return ChatReply{Raw: raw}, nil
}

// Backend groups every typed endpoint over a single client.
type Backend struct {
	Client *Client

	Students            Resource[StudentCreate, StudentOut]
	Faculty             Resource[FacultyCreate, FacultyOut]
	Courses             Resource[CourseCreate, CourseOut]
	Classrooms          Resource[ClassroomCreate, ClassroomOut]
	TimeSlots           Resource[TimeSlotCreate, TimeSlotOut]
	Enrollments         Enrollments
	Disruptions         Resource[DisruptionCreate, DisruptionOut]
	OptimizationResults Resource[OptimizationResultCreate, OptimizationResultOut]

	Registration Registration
	Optimizer    Optimizer
	Assistant    Assistant
}

// NewBackend builds the typed endpoint set.
func NewBackend(c *Client) *Backend {
	return &Backend{
		Client:              c,
		Students:            NewResource[StudentCreate, StudentOut](c, "/api/students"),
		Faculty:             NewResource[FacultyCreate, FacultyOut](c, "/api/faculty"),
		Courses:             NewResource[CourseCreate, CourseOut](c, "/api/courses"),
		Classrooms:          NewResource[ClassroomCreate, ClassroomOut](c, "/api/classrooms"),
		TimeSlots:           NewResource[TimeSlotCreate, TimeSlotOut](c, "/api/timeslots"),
		Enrollments:         Enrollments{r: NewResource[EnrollmentCreate, EnrollmentOut](c, "/api/enrollments")},
		Disruptions:         NewResource[DisruptionCreate, DisruptionOut](c, "/api/disruptions"),
		OptimizationResults: NewResource[OptimizationResultCreate, OptimizationResultOut](c, "/api/optimization_results"),
		Registration:        Registration{c: c},
		Optimizer:           Optimizer{c: c},
		Assistant:           Assistant{c: c},
	}
}
