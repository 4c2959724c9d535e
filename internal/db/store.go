package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/eventdesk/internal/model"
)

// Store persists events, attendees, and tasks. It enforces field-level
// constraints only; cross-entity integrity lives in the service layer.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type EventInput struct {
	Name        string
	Description string
	Location    string
	Date        time.Time
}

type EventUpdate struct {
	Name        *string
	Description *string
	Location    *string
	Date        *time.Time
}

type AttendeeInput struct {
	Name    string
	Email   string
	EventID string
}

type AttendeeUpdate struct {
	Name    *string
	Email   *string
	EventID *string
}

type TaskInput struct {
	Name       string
	Deadline   time.Time
	Status     string
	Progress   int64
	EventID    *string
	AttendeeID *string
}

type TaskUpdate struct {
	Name       *string
	Deadline   *time.Time
	Status     *string
	Progress   *int64
	AttendeeID *string
}

// Events

func (s *Store) CreateEvent(ctx context.Context, input EventInput) (model.Event, error) {
	if err := validateEventFields(input.Name, input.Description, input.Location, input.Date); err != nil {
		return model.Event{}, err
	}

	event := model.Event{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Location:    input.Location,
		Date:        input.Date,
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO events (id, name, description, location, date)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.Name, event.Description, event.Location, event.Date)
	if err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}

	return event, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (model.Event, error) {
	var event model.Event
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, description, location, date
		FROM events WHERE id = ?
	`, id).Scan(&event.ID, &event.Name, &event.Description, &event.Location, &event.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, notFound("event", id)
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, location, date
		FROM events ORDER BY date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var event model.Event
		if err := rows.Scan(&event.ID, &event.Name, &event.Description, &event.Location, &event.Date); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Store) UpdateEvent(ctx context.Context, id string, update EventUpdate) (model.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}

	if update.Name != nil {
		event.Name = *update.Name
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.Date != nil {
		event.Date = *update.Date
	}

	if err := validateEventFields(event.Name, event.Description, event.Location, event.Date); err != nil {
		return model.Event{}, err
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE events SET name = ?, description = ?, location = ?, date = ?
		WHERE id = ?
	`, event.Name, event.Description, event.Location, event.Date, event.ID)
	if err != nil {
		return model.Event{}, fmt.Errorf("update event: %w", err)
	}

	return event, nil
}

// DeleteEvent removes the event and returns its prior state. Dependent
// references are the caller's concern.
func (s *Store) DeleteEvent(ctx context.Context, id string) (model.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return model.Event{}, fmt.Errorf("delete event: %w", err)
	}
	return event, nil
}

// Attendees

func (s *Store) CreateAttendee(ctx context.Context, input AttendeeInput) (model.Attendee, error) {
	if err := validateAttendeeName(input.Name); err != nil {
		return model.Attendee{}, err
	}
	if err := validateEmail(input.Email); err != nil {
		return model.Attendee{}, err
	}
	if input.EventID == "" {
		return model.Attendee{}, invalid("event", "is required")
	}
	if err := s.checkEmailUnused(ctx, input.Email, ""); err != nil {
		return model.Attendee{}, err
	}

	eventID := input.EventID
	attendee := model.Attendee{
		ID:      uuid.NewString(),
		Name:    input.Name,
		Email:   input.Email,
		EventID: &eventID,
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO attendees (id, name, email, event_id)
		VALUES (?, ?, ?, ?)
	`, attendee.ID, attendee.Name, attendee.Email, attendee.EventID)
	if err != nil {
		return model.Attendee{}, fmt.Errorf("create attendee: %w", err)
	}

	return attendee, nil
}

func (s *Store) GetAttendee(ctx context.Context, id string) (model.Attendee, error) {
	var attendee model.Attendee
	var eventID sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, email, event_id
		FROM attendees WHERE id = ?
	`, id).Scan(&attendee.ID, &attendee.Name, &attendee.Email, &eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Attendee{}, notFound("attendee", id)
	}
	if err != nil {
		return model.Attendee{}, fmt.Errorf("get attendee: %w", err)
	}
	if eventID.Valid {
		attendee.EventID = &eventID.String
	}
	return attendee, nil
}

func (s *Store) ListAttendees(ctx context.Context) ([]model.Attendee, error) {
	return s.queryAttendees(ctx, `
		SELECT id, name, email, event_id
		FROM attendees ORDER BY name, id
	`)
}

func (s *Store) ListAttendeesByEvent(ctx context.Context, eventID string) ([]model.Attendee, error) {
	return s.queryAttendees(ctx, `
		SELECT id, name, email, event_id
		FROM attendees WHERE event_id = ? ORDER BY name, id
	`, eventID)
}

func (s *Store) queryAttendees(ctx context.Context, query string, args ...any) ([]model.Attendee, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	attendees := []model.Attendee{}
	for rows.Next() {
		var attendee model.Attendee
		var eventID sql.NullString
		if err := rows.Scan(&attendee.ID, &attendee.Name, &attendee.Email, &eventID); err != nil {
			return nil, fmt.Errorf("list attendees: %w", err)
		}
		if eventID.Valid {
			id := eventID.String
			attendee.EventID = &id
		}
		attendees = append(attendees, attendee)
	}
	return attendees, rows.Err()
}

func (s *Store) UpdateAttendee(ctx context.Context, id string, update AttendeeUpdate) (model.Attendee, error) {
	attendee, err := s.GetAttendee(ctx, id)
	if err != nil {
		return model.Attendee{}, err
	}

	if update.Name != nil {
		if err := validateAttendeeName(*update.Name); err != nil {
			return model.Attendee{}, err
		}
		attendee.Name = *update.Name
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return model.Attendee{}, err
		}
		if err := s.checkEmailUnused(ctx, *update.Email, id); err != nil {
			return model.Attendee{}, err
		}
		attendee.Email = *update.Email
	}
	if update.EventID != nil {
		attendee.EventID = update.EventID
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE attendees SET name = ?, email = ?, event_id = ?
		WHERE id = ?
	`, attendee.Name, attendee.Email, attendee.EventID, attendee.ID)
	if err != nil {
		return model.Attendee{}, fmt.Errorf("update attendee: %w", err)
	}

	return attendee, nil
}

func (s *Store) DeleteAttendee(ctx context.Context, id string) (model.Attendee, error) {
	attendee, err := s.GetAttendee(ctx, id)
	if err != nil {
		return model.Attendee{}, err
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM attendees WHERE id = ?`, id); err != nil {
		return model.Attendee{}, fmt.Errorf("delete attendee: %w", err)
	}
	return attendee, nil
}

// CountAttendees returns how many of the given ids resolve to attendees.
func (s *Store) CountAttendees(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM attendees WHERE id IN (%s)`, placeholders(len(ids)))
	var count int
	if err := s.DB.QueryRowContext(ctx, query, anySlice(ids)...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	return count, nil
}

// SetAttendeeEvents points every named attendee at the given event.
func (s *Store) SetAttendeeEvents(ctx context.Context, ids []string, eventID string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE attendees SET event_id = ? WHERE id IN (%s)`, placeholders(len(ids)))
	args := append([]any{eventID}, anySlice(ids)...)
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set attendee events: %w", err)
	}
	return nil
}

// ClearAttendeeEvents unsets the event reference on every attendee
// currently pointing at eventID.
func (s *Store) ClearAttendeeEvents(ctx context.Context, eventID string) error {
	if _, err := s.DB.ExecContext(ctx, `
		UPDATE attendees SET event_id = NULL WHERE event_id = ?
	`, eventID); err != nil {
		return fmt.Errorf("clear attendee events: %w", err)
	}
	return nil
}

// Email uniqueness is exact-match. The UNIQUE constraint on the column is
// a backstop for racing writers; this check is the one that produces a
// ValidationError.
func (s *Store) checkEmailUnused(ctx context.Context, email, excludeID string) error {
	var count int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendees WHERE email = ? AND id != ?
	`, email, excludeID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return invalid("email", "is already in use")
	}
	return nil
}

// Tasks

func (s *Store) CreateTask(ctx context.Context, input TaskInput) (model.Task, error) {
	status := input.Status
	if status == "" {
		status = model.StatusIncomplete
	}
	if err := validateTaskStatus(status); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Deadline:   input.Deadline,
		Status:     status,
		Progress:   input.Progress,
		EventID:    input.EventID,
		AttendeeID: input.AttendeeID,
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, name, deadline, status, progress, event_id, attendee_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Name, task.Deadline, task.Status, task.Progress, task.EventID, task.AttendeeID)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	var task model.Task
	var eventID, attendeeID sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, deadline, status, progress, event_id, attendee_id
		FROM tasks WHERE id = ?
	`, id).Scan(&task.ID, &task.Name, &task.Deadline, &task.Status, &task.Progress, &eventID, &attendeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, notFound("task", id)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	if eventID.Valid {
		task.EventID = &eventID.String
	}
	if attendeeID.Valid {
		task.AttendeeID = &attendeeID.String
	}
	return task, nil
}

func (s *Store) ListTasksByEvent(ctx context.Context, eventID string) ([]model.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, deadline, status, progress, event_id, attendee_id
		FROM tasks WHERE event_id = ? ORDER BY deadline, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var task model.Task
		var evID, atID sql.NullString
		if err := rows.Scan(&task.ID, &task.Name, &task.Deadline, &task.Status, &task.Progress, &evID, &atID); err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		if evID.Valid {
			id := evID.String
			task.EventID = &id
		}
		if atID.Valid {
			id := atID.String
			task.AttendeeID = &id
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, id string, update TaskUpdate) (model.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	if update.Name != nil {
		task.Name = *update.Name
	}
	if update.Deadline != nil {
		task.Deadline = *update.Deadline
	}
	if update.Status != nil {
		if err := validateTaskStatus(*update.Status); err != nil {
			return model.Task{}, err
		}
		task.Status = *update.Status
	}
	if update.Progress != nil {
		task.Progress = *update.Progress
	}
	if update.AttendeeID != nil {
		task.AttendeeID = update.AttendeeID
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE tasks SET name = ?, deadline = ?, status = ?, progress = ?, attendee_id = ?
		WHERE id = ?
	`, task.Name, task.Deadline, task.Status, task.Progress, task.AttendeeID, task.ID)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) (model.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return model.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return task, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func anySlice(ids []string) []any {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
