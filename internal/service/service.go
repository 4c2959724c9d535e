// Package service keeps attendee and task references to events consistent
// and exposes the cross-entity queries the API serves.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Joseda-hg/eventdesk/internal/db"
	"github.com/Joseda-hg/eventdesk/internal/model"
)

type Service struct {
	store *db.Store
}

func New(store *db.Store) *Service {
	return &Service{store: store}
}

// Events

func (s *Service) CreateEvent(ctx context.Context, input db.EventInput) (model.Event, error) {
	return s.store.CreateEvent(ctx, input)
}

func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.store.ListEvents(ctx)
}

// GetEvent returns the event and, when includeAttendees is set, the
// contact projection of every attendee referencing it.
func (s *Service) GetEvent(ctx context.Context, id string, includeAttendees bool) (model.Event, []model.AttendeeContact, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, nil, err
	}

	if !includeAttendees {
		return event, nil, nil
	}

	contacts, err := s.ListEventAttendees(ctx, id)
	if err != nil {
		return model.Event{}, nil, err
	}
	return event, contacts, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, update db.EventUpdate) (model.Event, error) {
	return s.store.UpdateEvent(ctx, id, update)
}

// DeleteEvent removes the event and then unsets the event reference on
// every attendee that pointed at it. The cleanup is best-effort: if it
// fails after the delete succeeded there is no rollback, the error is
// surfaced and the dangling references remain. Task references to the
// deleted event are left untouched.
func (s *Service) DeleteEvent(ctx context.Context, id string) (model.Event, error) {
	event, err := s.store.DeleteEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}

	if err := s.store.ClearAttendeeEvents(ctx, id); err != nil {
		slog.Error("attendee cleanup after event delete failed", "event", id, "error", err)
		return model.Event{}, fmt.Errorf("event deleted but attendee cleanup failed: %w", err)
	}

	return event, nil
}

// AttachAttendees points every named attendee at the event. The whole
// call fails without mutation unless the event resolves, the id list is
// non-empty, and every id resolves to an attendee.
func (s *Service) AttachAttendees(ctx context.Context, eventID string, attendeeIDs []string) error {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return err
	}

	if len(attendeeIDs) == 0 {
		return &db.ValidationError{Field: "attendees", Reason: "at least one attendee id is required"}
	}

	count, err := s.store.CountAttendees(ctx, attendeeIDs)
	if err != nil {
		return err
	}
	if count != len(attendeeIDs) {
		return &db.ValidationError{Field: "attendees", Reason: "some attendee ids are invalid"}
	}

	return s.store.SetAttendeeEvents(ctx, attendeeIDs, eventID)
}

// ListEventAttendees returns the contact projection of the event's
// attendees. The event must resolve.
func (s *Service) ListEventAttendees(ctx context.Context, eventID string) ([]model.AttendeeContact, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	attendees, err := s.store.ListAttendeesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	contacts := make([]model.AttendeeContact, 0, len(attendees))
	for _, attendee := range attendees {
		contacts = append(contacts, model.AttendeeContact{ID: attendee.ID, Name: attendee.Name, Email: attendee.Email})
	}
	return contacts, nil
}

// Attendees

// CreateAttendee requires name, email, and an event id that resolves to
// an existing event.
func (s *Service) CreateAttendee(ctx context.Context, name, email, eventID string) (model.Attendee, error) {
	if eventID == "" {
		return model.Attendee{}, &db.ValidationError{Field: "event", Reason: "is required"}
	}
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return model.Attendee{}, err
	}

	return s.store.CreateAttendee(ctx, db.AttendeeInput{Name: name, Email: email, EventID: eventID})
}

// ListAttendees returns all attendees with their event reference expanded
// to a summary. A reference to a deleted event expands to nothing.
func (s *Service) ListAttendees(ctx context.Context) ([]model.AttendeeWithEvent, error) {
	attendees, err := s.store.ListAttendees(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.AttendeeWithEvent, 0, len(attendees))
	for _, attendee := range attendees {
		entry := model.AttendeeWithEvent{ID: attendee.ID, Name: attendee.Name, Email: attendee.Email}
		if attendee.EventID != nil {
			if event, err := s.store.GetEvent(ctx, *attendee.EventID); err == nil {
				entry.Event = &model.EventSummary{
					ID:       event.ID,
					Name:     event.Name,
					Date:     event.Date,
					Location: event.Location,
				}
			} else if !db.IsNotFound(err) {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// ListAttendeesByEvent returns the raw attendee records referencing the
// event, with no existence check on the event itself.
func (s *Service) ListAttendeesByEvent(ctx context.Context, eventID string) ([]model.Attendee, error) {
	return s.store.ListAttendeesByEvent(ctx, eventID)
}

// UpdateAttendee replaces all three attendee fields; each is required.
func (s *Service) UpdateAttendee(ctx context.Context, id, name, email, eventID string) (model.Attendee, error) {
	if name == "" {
		return model.Attendee{}, &db.ValidationError{Field: "name", Reason: "is required"}
	}
	if email == "" {
		return model.Attendee{}, &db.ValidationError{Field: "email", Reason: "is required"}
	}
	if eventID == "" {
		return model.Attendee{}, &db.ValidationError{Field: "event", Reason: "is required"}
	}

	return s.store.UpdateAttendee(ctx, id, db.AttendeeUpdate{Name: &name, Email: &email, EventID: &eventID})
}

func (s *Service) DeleteAttendee(ctx context.Context, id string) (model.Attendee, error) {
	return s.store.DeleteAttendee(ctx, id)
}

// Tasks

// CreateTask requires name, deadline, and event id. The attendee id, when
// given, is attached without an existence check.
func (s *Service) CreateTask(ctx context.Context, name string, deadline time.Time, eventID string, attendeeID, status *string) (model.Task, error) {
	if name == "" {
		return model.Task{}, &db.ValidationError{Field: "name", Reason: "is required"}
	}
	if deadline.IsZero() {
		return model.Task{}, &db.ValidationError{Field: "deadline", Reason: "is required"}
	}
	if eventID == "" {
		return model.Task{}, &db.ValidationError{Field: "event", Reason: "is required"}
	}

	input := db.TaskInput{
		Name:       name,
		Deadline:   deadline,
		EventID:    &eventID,
		AttendeeID: attendeeID,
	}
	if status != nil {
		input.Status = *status
	}

	return s.store.CreateTask(ctx, input)
}

// ListTasksByEvent returns the event's tasks with the attendee reference
// expanded to a contact where it still resolves.
func (s *Service) ListTasksByEvent(ctx context.Context, eventID string) ([]model.TaskWithAttendee, error) {
	tasks, err := s.store.ListTasksByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	result := make([]model.TaskWithAttendee, 0, len(tasks))
	for _, task := range tasks {
		entry := model.TaskWithAttendee{
			ID:       task.ID,
			Name:     task.Name,
			Deadline: task.Deadline,
			Status:   task.Status,
			Progress: task.Progress,
			EventID:  task.EventID,
		}
		if task.AttendeeID != nil {
			if attendee, err := s.store.GetAttendee(ctx, *task.AttendeeID); err == nil {
				entry.Attendee = &model.AttendeeContact{ID: attendee.ID, Name: attendee.Name, Email: attendee.Email}
			} else if !db.IsNotFound(err) {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *Service) UpdateTask(ctx context.Context, id string, update db.TaskUpdate) (model.Task, error) {
	return s.store.UpdateTask(ctx, id, update)
}

func (s *Service) DeleteTask(ctx context.Context, id string) (model.Task, error) {
	return s.store.DeleteTask(ctx, id)
}
