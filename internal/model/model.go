package model

import "time"

// Task status values. There is no enforced transition order; any status
// may be replaced by any other via update.
const (
	StatusIncomplete = "Incomplete"
	StatusInProgress = "In Progress"
	StatusComplete   = "Complete"
)

// ValidStatus reports whether status is one of the three allowed values.
func ValidStatus(status string) bool {
	switch status {
	case StatusIncomplete, StatusInProgress, StatusComplete:
		return true
	}
	return false
}

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
}

// Attendee references its event by id. The reference is cleared, not the
// attendee deleted, when the event goes away.
type Attendee struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	EventID *string `json:"event,omitempty"`
}

type Task struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Deadline   time.Time `json:"deadline"`
	Status     string    `json:"status"`
	Progress   int64     `json:"progress"`
	EventID    *string   `json:"event,omitempty"`
	AttendeeID *string   `json:"attendee,omitempty"`
}

// AttendeeContact is the projection used when listing an event's attendees
// and when expanding a task's attendee reference.
type AttendeeContact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventSummary is the projection embedded in attendee listings.
type EventSummary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// AttendeeWithEvent is an attendee with its event reference expanded.
// Event is nil when the reference is unset or no longer resolves.
type AttendeeWithEvent struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Event *EventSummary `json:"event,omitempty"`
}

// TaskWithAttendee is a task with its attendee reference expanded.
// Attendee is nil when the reference is unset or no longer resolves.
type TaskWithAttendee struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Deadline time.Time        `json:"deadline"`
	Status   string           `json:"status"`
	Progress int64            `json:"progress"`
	EventID  *string          `json:"event,omitempty"`
	Attendee *AttendeeContact `json:"attendee,omitempty"`
}
