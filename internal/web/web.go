package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Joseda-hg/eventdesk/internal/db"
	"github.com/Joseda-hg/eventdesk/internal/model"
	"github.com/Joseda-hg/eventdesk/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

type Server struct {
	svc *service.Service
}

func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)

	mux.HandleFunc("POST /api/events", s.createEvent)
	mux.HandleFunc("GET /api/events", s.listEvents)
	mux.HandleFunc("GET /api/events/{id}", s.getEvent)
	mux.HandleFunc("PUT /api/events/{id}", s.updateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.deleteEvent)
	mux.HandleFunc("POST /api/events/{id}/attendees", s.attachAttendees)
	mux.HandleFunc("GET /api/events/{id}/attendees", s.listEventAttendees)

	mux.HandleFunc("POST /api/attendees", s.createAttendee)
	mux.HandleFunc("GET /api/attendees", s.listAttendees)
	mux.HandleFunc("PUT /api/attendees/{id}", s.updateAttendee)
	mux.HandleFunc("DELETE /api/attendees/{id}", s.deleteAttendee)

	mux.HandleFunc("POST /api/tasks", s.createTask)
	mux.HandleFunc("GET /api/tasks/event/{eventId}", s.listTasksForEvent)
	mux.HandleFunc("GET /api/tasks/attendees", s.listTaskAttendees)
	mux.HandleFunc("GET /api/tasks/attendees/event/{eventId}", s.listTaskAttendeesForEvent)
	mux.HandleFunc("PUT /api/tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.deleteTask)

	return withCORS(withLogging(mux))
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.ListEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		Total  int
		Events []model.Event
	}{Total: len(events), Events: events}

	if err := indexTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Events

type eventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Date        *string `json:"date"`
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		eventError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if emptyField(req.Name) || emptyField(req.Description) || emptyField(req.Location) || emptyField(req.Date) {
		eventError(w, http.StatusBadRequest, "All fields (name, description, location, date) are required.", nil)
		return
	}

	date, err := parseDate(*req.Date)
	if err != nil {
		eventError(w, http.StatusBadRequest, "Invalid date.", err)
		return
	}

	event, err := s.svc.CreateEvent(r.Context(), db.EventInput{
		Name:        *req.Name,
		Description: *req.Description,
		Location:    *req.Location,
		Date:        date,
	})
	if err != nil {
		eventError(w, statusFor(err), "Error creating event.", err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Success bool        `json:"success"`
		Event   model.Event `json:"event"`
	}{true, event})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.ListEvents(r.Context())
	if err != nil {
		eventError(w, http.StatusInternalServerError, "Error fetching events.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Events  []model.Event `json:"events"`
	}{true, events})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	includeAttendees := r.URL.Query().Get("includeAttendees") == "true"

	event, attendees, err := s.svc.GetEvent(r.Context(), id, includeAttendees)
	if db.IsNotFound(err) {
		eventError(w, http.StatusNotFound, "Event not found.", nil)
		return
	}
	if err != nil {
		eventError(w, http.StatusInternalServerError, "Error fetching event.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success   bool                    `json:"success"`
		Event     model.Event             `json:"event"`
		Attendees []model.AttendeeContact `json:"attendees,omitempty"`
	}{true, event, attendees})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		eventError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	update := db.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			eventError(w, http.StatusBadRequest, "Invalid date.", err)
			return
		}
		update.Date = &date
	}

	event, err := s.svc.UpdateEvent(r.Context(), id, update)
	if db.IsNotFound(err) {
		eventError(w, http.StatusNotFound, "Event not found.", nil)
		return
	}
	if err != nil {
		eventError(w, statusFor(err), "Error updating event.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool        `json:"success"`
		Event   model.Event `json:"event"`
	}{true, event})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	event, err := s.svc.DeleteEvent(r.Context(), id)
	if db.IsNotFound(err) {
		eventError(w, http.StatusNotFound, "Event not found.", nil)
		return
	}
	if err != nil {
		eventError(w, http.StatusInternalServerError, "Error deleting event.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Event   model.Event `json:"event"`
	}{true, "Event deleted successfully", event})
}

func (s *Server) attachAttendees(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Attendees []string `json:"attendees"`
	}
	if err := decodeBody(r, &req); err != nil {
		eventError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if len(req.Attendees) == 0 {
		eventError(w, http.StatusBadRequest, "Attendees array is required.", nil)
		return
	}

	err := s.svc.AttachAttendees(r.Context(), id, req.Attendees)
	if db.IsNotFound(err) {
		eventError(w, http.StatusNotFound, "Event not found.", nil)
		return
	}
	if db.IsValidation(err) {
		eventError(w, http.StatusBadRequest, "Some attendee IDs are invalid.", nil)
		return
	}
	if err != nil {
		eventError(w, http.StatusInternalServerError, "Error adding attendees.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{true, "Attendees added successfully."})
}

func (s *Server) listEventAttendees(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	attendees, err := s.svc.ListEventAttendees(r.Context(), id)
	if db.IsNotFound(err) {
		eventError(w, http.StatusNotFound, "Event not found.", nil)
		return
	}
	if err != nil {
		eventError(w, http.StatusInternalServerError, "Error fetching attendees.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success   bool                    `json:"success"`
		Attendees []model.AttendeeContact `json:"attendees"`
	}{true, attendees})
}

// Attendees

type attendeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Event string `json:"event"`
}

func (s *Server) createAttendee(w http.ResponseWriter, r *http.Request) {
	var req attendeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if req.Name == "" || req.Email == "" || req.Event == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and event are required.", nil)
		return
	}

	attendee, err := s.svc.CreateAttendee(r.Context(), req.Name, req.Email, req.Event)
	if err != nil {
		// The attendee creation contract reports every failure, including
		// an unresolved event reference, as a bad request.
		writeError(w, http.StatusBadRequest, "Error adding attendee.", err)
		return
	}

	writeJSON(w, http.StatusCreated, attendee)
}

func (s *Server) listAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := s.svc.ListAttendees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching attendees.", err)
		return
	}

	writeJSON(w, http.StatusOK, attendees)
}

func (s *Server) updateAttendee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req attendeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if req.Name == "" || req.Email == "" || req.Event == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and event are required.", nil)
		return
	}

	attendee, err := s.svc.UpdateAttendee(r.Context(), id, req.Name, req.Email, req.Event)
	if db.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Attendee not found.", nil)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), "Error updating attendee", err)
		return
	}

	writeJSON(w, http.StatusOK, attendee)
}

func (s *Server) deleteAttendee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.svc.DeleteAttendee(r.Context(), id); err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Attendee not found.", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Error deleting attendee.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{"Attendee deleted successfully"})
}

// Tasks

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Deadline string  `json:"deadline"`
		Event    string  `json:"event"`
		Attendee *string `json:"attendee"`
		Status   *string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if req.Name == "" || req.Deadline == "" || req.Event == "" {
		writeError(w, http.StatusBadRequest, `Fields "name", "deadline", and "event" are required.`, nil)
		return
	}

	if req.Status != nil && !model.ValidStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, `Invalid task status. Valid options are "Incomplete", "In Progress", "Complete".`, nil)
		return
	}

	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deadline.", err)
		return
	}

	task, err := s.svc.CreateTask(r.Context(), req.Name, deadline, req.Event, req.Attendee, req.Status)
	if err != nil {
		writeError(w, statusFor(err), "Error creating task.", err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasksForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")

	tasks, err := s.svc.ListTasksByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching tasks.", err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) listTaskAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := s.svc.ListAttendees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching attendees.", err)
		return
	}

	writeJSON(w, http.StatusOK, attendees)
}

func (s *Server) listTaskAttendeesForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")

	attendees, err := s.svc.ListAttendeesByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching attendees for this event.", err)
		return
	}

	writeJSON(w, http.StatusOK, attendees)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Name     *string `json:"name"`
		Deadline *string `json:"deadline"`
		Status   *string `json:"status"`
		Progress *int64  `json:"progress"`
		Attendee *string `json:"attendee"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	if req.Status != nil && !model.ValidStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid task status.", nil)
		return
	}

	update := db.TaskUpdate{
		Name:       req.Name,
		Status:     req.Status,
		Progress:   req.Progress,
		AttendeeID: req.Attendee,
	}
	if req.Deadline != nil {
		deadline, err := parseDate(*req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid deadline.", err)
			return
		}
		update.Deadline = &deadline
	}

	task, err := s.svc.UpdateTask(r.Context(), id, update)
	if db.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Task not found.", nil)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), "Error updating task.", err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := s.svc.DeleteTask(r.Context(), id)
	if db.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Task not found.", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error deleting task.", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string     `json:"message"`
		Task    model.Task `json:"task"`
	}{"Task deleted successfully.", task})
}

// Helpers

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func emptyField(value *string) bool {
	return value == nil || *value == ""
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates, the two
// shapes date inputs arrive in.
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func statusFor(err error) int {
	switch {
	case db.IsValidation(err):
		return http.StatusBadRequest
	case db.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the {error, details} failure body.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	writeJSON(w, status, body)
}

// eventError emits the events-route failure body, which carries a success
// flag alongside the error.
func eventError(w http.ResponseWriter, status int, message string, err error) {
	body := struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}{Success: false, Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	writeJSON(w, status, body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// withCORS allows the browser frontend, served from a different origin,
// to call the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
