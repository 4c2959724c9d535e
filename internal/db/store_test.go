package db

import (
	"context"
	"testing"
	"time"

	"github.com/Joseda-hg/eventdesk/internal/model"
)

func TestCreateEventRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	created, err := store.CreateEvent(context.Background(), EventInput{
		Name:        "Launch party",
		Description: "Release celebration",
		Location:    "Rooftop",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected event ID to be assigned")
	}

	got, err := store.GetEvent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Name != "Launch party" || got.Description != "Release celebration" || got.Location != "Rooftop" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Date.Equal(date) {
		t.Fatalf("expected date %v, got %v", date, got.Date)
	}
}

func TestCreateEventRequiresFields(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	_, err := store.CreateEvent(context.Background(), EventInput{
		Name:     "No description",
		Location: "Somewhere",
		Date:     time.Now(),
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetEventNotFound(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	_, err := store.GetEvent(context.Background(), "no-such-id")
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateEventPartial(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	created, err := store.CreateEvent(context.Background(), EventInput{
		Name:        "Original",
		Description: "Desc",
		Location:    "Hall A",
		Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	location := "Hall B"
	updated, err := store.UpdateEvent(context.Background(), created.ID, EventUpdate{Location: &location})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if updated.Location != "Hall B" {
		t.Fatalf("expected location 'Hall B', got %q", updated.Location)
	}
	if updated.Name != "Original" || updated.Description != "Desc" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestCreateAttendeeDuplicateEmail(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	first, err := store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Ada", Email: "a@b.com", EventID: "event-1",
	})
	if err != nil {
		t.Fatalf("create first attendee: %v", err)
	}
	if first.EventID == nil || *first.EventID != "event-1" {
		t.Fatalf("expected event reference to be stored")
	}

	_, err = store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Bob", Email: "a@b.com", EventID: "event-1",
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}

	// Uniqueness is exact-match: a different casing is a different address.
	if _, err := store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Cas", Email: "A@b.com", EventID: "event-1",
	}); err != nil {
		t.Fatalf("expected different-case email to be accepted, got %v", err)
	}
}

func TestCreateAttendeeMalformedEmail(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	_, err := store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Ada", Email: "not-an-email", EventID: "event-1",
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for malformed email, got %v", err)
	}

	if _, err := store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Ada", Email: "user@example.com", EventID: "event-1",
	}); err != nil {
		t.Fatalf("expected well-formed email to be accepted, got %v", err)
	}
}

func TestUpdateAttendeeKeepsEmailRule(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	first, err := store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Ada", Email: "ada@example.com", EventID: "event-1",
	})
	if err != nil {
		t.Fatalf("create attendee: %v", err)
	}
	second, err := store.CreateAttendee(context.Background(), AttendeeInput{
		Name: "Bob", Email: "bob@example.com", EventID: "event-1",
	})
	if err != nil {
		t.Fatalf("create attendee: %v", err)
	}

	email := "ada@example.com"
	if _, err := store.UpdateAttendee(context.Background(), second.ID, AttendeeUpdate{Email: &email}); !IsValidation(err) {
		t.Fatalf("expected validation error taking another attendee's email, got %v", err)
	}

	// Re-submitting an attendee's own email is not a conflict.
	if _, err := store.UpdateAttendee(context.Background(), first.ID, AttendeeUpdate{Email: &email}); err != nil {
		t.Fatalf("update with own email: %v", err)
	}
}

func TestClearAttendeeEvents(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	for _, email := range []string{"one@example.com", "two@example.com"} {
		if _, err := store.CreateAttendee(context.Background(), AttendeeInput{
			Name: "Guest", Email: email, EventID: "event-1",
		}); err != nil {
			t.Fatalf("create attendee: %v", err)
		}
	}

	if err := store.ClearAttendeeEvents(context.Background(), "event-1"); err != nil {
		t.Fatalf("clear attendee events: %v", err)
	}

	attendees, err := store.ListAttendees(context.Background())
	if err != nil {
		t.Fatalf("list attendees: %v", err)
	}
	for _, attendee := range attendees {
		if attendee.EventID != nil {
			t.Fatalf("expected event reference cleared, got %v", *attendee.EventID)
		}
	}
}

func TestCreateTaskDefaultsStatus(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	created, err := store.CreateTask(context.Background(), TaskInput{
		Name:     "Book caterer",
		Deadline: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Status != model.StatusIncomplete {
		t.Fatalf("expected default status %q, got %q", model.StatusIncomplete, created.Status)
	}
	if created.Progress != 0 {
		t.Fatalf("expected default progress 0, got %d", created.Progress)
	}
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	_, err := store.CreateTask(context.Background(), TaskInput{
		Name:     "Book caterer",
		Deadline: time.Now(),
		Status:   "Done",
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for status 'Done', got %v", err)
	}
}

func TestUpdateTaskInvalidStatusLeavesStored(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	created, err := store.CreateTask(context.Background(), TaskInput{
		Name:     "Book caterer",
		Deadline: time.Now(),
		Status:   model.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	bad := "Done"
	if _, err := store.UpdateTask(context.Background(), created.ID, TaskUpdate{Status: &bad}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := store.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != model.StatusInProgress {
		t.Fatalf("expected stored status unchanged, got %q", got.Status)
	}
}

func TestUpdateTaskProgressRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	eventID := "event-1"
	created, err := store.CreateTask(context.Background(), TaskInput{
		Name:     "Book caterer",
		Deadline: deadline,
		EventID:  &eventID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	progress := int64(50)
	if _, err := store.UpdateTask(context.Background(), created.ID, TaskUpdate{Progress: &progress}); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err := store.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Progress != 50 {
		t.Fatalf("expected progress 50, got %d", got.Progress)
	}
	if got.Name != "Book caterer" || got.Status != model.StatusIncomplete {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !got.Deadline.Equal(deadline) {
		t.Fatalf("expected deadline %v, got %v", deadline, got.Deadline)
	}
	if got.EventID == nil || *got.EventID != "event-1" {
		t.Fatalf("expected event reference unchanged")
	}
}

func TestDeleteTaskReturnsPriorState(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	created, err := store.CreateTask(context.Background(), TaskInput{
		Name:     "Book caterer",
		Deadline: time.Now(),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	deleted, err := store.DeleteTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if deleted.Name != "Book caterer" {
		t.Fatalf("expected prior state in delete result, got %+v", deleted)
	}

	if _, err := store.GetTask(context.Background(), created.ID); !IsNotFound(err) {
		t.Fatalf("expected task gone, got %v", err)
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
