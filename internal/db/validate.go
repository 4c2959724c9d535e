package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/Joseda-hg/eventdesk/internal/model"
)

// Same pattern the attendee email was always checked against.
var emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)

func validateEventFields(name, description, location string, date time.Time) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(description) == "" {
		return invalid("description", "is required")
	}
	if strings.TrimSpace(location) == "" {
		return invalid("location", "is required")
	}
	if date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

func validateAttendeeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "is required")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email", "is not a valid email address")
	}
	return nil
}

func validateTaskStatus(status string) error {
	if !model.ValidStatus(status) {
		return invalid("status", `must be one of "Incomplete", "In Progress", "Complete"`)
	}
	return nil
}
