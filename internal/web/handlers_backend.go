package web

// handlers_backend.go forwards dashboard actions to the timetable backend.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/logging"
)

// handleHealth reports liveness and import capacity. It needs no session.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
	}
	if s.backend != nil {
		body["backend"] = s.backend.Client.BaseURL()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleValidateRegistration asks the backend whether a student may take
// the listed courses.
func (s *Server) handleValidateRegistration(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	studentID, err := intField(values, "student_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	courseIDs, err := intList(values, "course_ids")
	if err != nil {
		respondError(w, r, err)
		return
	}

	out, err := s.backend.Registration.Validate(r.Context(), studentID, courseIDs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeRaw(w, out)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	studentID, err := intField(values, "student_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	courseID, err := intField(values, "course_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	out, err := s.backend.Registration.Enroll(r.Context(), studentID, courseID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("enrolled", "student_id", studentID, "course_id", courseID)
	writeRaw(w, out)
}

// handleReassign asks the optimizer for replacement faculty.
func (s *Server) handleReassign(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	courseID, err := intField(values, "course_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	facultyID, err := intField(values, "faculty_unavailable")
	if err != nil {
		respondError(w, r, err)
		return
	}

	out, err := s.backend.Optimizer.Reassign(r.Context(), courseID, facultyID, strings.TrimSpace(values["reason"]))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeRaw(w, out)
}

// handleApprove confirms a reassignment. The approver defaults to the
// signed-in admin.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	courseID, err := intField(values, "course_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	facultyID, err := intField(values, "new_faculty_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	admin := strings.TrimSpace(values["admin_name"])
	if admin == "" {
		admin = session(r).Email
	}

	out, err := s.backend.Optimizer.Approve(r.Context(), courseID, facultyID, admin)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("reassignment approved",
		"course_id", courseID,
		"new_faculty_id", facultyID,
	)
	writeRaw(w, out)
}

func (s *Server) handleOptimizationResults(w http.ResponseWriter, r *http.Request) {
	out, err := s.backend.OptimizationResults.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// chatResponse carries the assistant's answer as text and as sanitized HTML.
type chatResponse struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// handleChat forwards a message to the assistant on behalf of the session.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	text := strings.TrimSpace(values["text"])
	if text == "" {
		respondError(w, r, core.ErrInvalidInput)
		return
	}

	sess := session(r)
	reply, err := s.backend.Assistant.Chat(r.Context(), text, sess.UserID, string(sess.Role))
	if err != nil {
		respondError(w, r, err)
		return
	}

	answer := reply.Text()
	writeJSON(w, http.StatusOK, chatResponse{Text: answer, HTML: renderMarkdown(answer)})
}

// renderMarkdown turns assistant markdown into HTML. Raw HTML in the reply
// is dropped.
func renderMarkdown(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank |
			html.Safelink | html.NofollowLinks | html.NoreferrerLinks,
	})
	return string(markdown.ToHTML([]byte(text), p, renderer))
}

// writeRaw relays a backend JSON body unchanged.
func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	if len(body) == 0 {
		body = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
