package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 1000
	NameMinLen        = 2
	NameMaxLen        = 50
	PasswordMinLen    = 6
)

// NewTask builds a task from raw input, applying documented defaults and
// running a single linear validation pass. The first violated constraint
// short-circuits; nothing of a failed payload reaches storage.
func NewTask(ownerID, title, description string, priority TaskPriority, status TaskStatus, due *string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return nil, NewValidationError("title cannot be more than 200 characters")
	}

	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > DescriptionMaxLen {
		return nil, NewValidationError("description cannot be more than 1000 characters")
	}

	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return nil, NewValidationError("priority must be one of: low, medium, high")
	}

	if status == "" {
		status = StatusTodo
	}
	if !ValidStatus(status) {
		return nil, NewValidationError("status must be one of: todo, in-progress, completed")
	}

	task := &Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
	}

	if due != nil && *due != "" {
		parsed, err := ParseDueDate(*due)
		if err != nil {
			return nil, err
		}
		task.DueDate = parsed
	}

	return task, nil
}

// Validate checks each supplied patch field against the same constraints as
// task creation. Order mirrors the create pass so the first offending field
// is reported consistently.
func (p *TaskPatch) Validate() error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return NewValidationError("title is required")
		}
		if utf8.RuneCountInString(title) > TitleMaxLen {
			return NewValidationError("title cannot be more than 200 characters")
		}
		*p.Title = title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if utf8.RuneCountInString(desc) > DescriptionMaxLen {
			return NewValidationError("description cannot be more than 1000 characters")
		}
		*p.Description = desc
	}
	if p.Priority != nil && !ValidPriority(*p.Priority) {
		return NewValidationError("priority must be one of: low, medium, high")
	}
	if p.Status != nil && !ValidStatus(*p.Status) {
		return NewValidationError("status must be one of: todo, in-progress, completed")
	}
	return nil
}

// ParseDueDate accepts RFC 3339 timestamps or bare calendar dates.
func ParseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, NewValidationError("due date must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// ValidateRegistration checks the fields of a registration request.
func ValidateRegistration(name, email, password string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < NameMinLen {
		return NewValidationError("name must be at least 2 characters")
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		return NewValidationError("name cannot be more than 50 characters")
	}
	if !ValidEmail(email) {
		return NewValidationError("please provide a valid email")
	}
	if len(password) < PasswordMinLen {
		return NewValidationError("password must be at least 6 characters")
	}
	return nil
}

// ValidateLogin checks the fields of a login request.
func ValidateLogin(email, password string) error {
	if !ValidEmail(email) {
		return NewValidationError("please provide a valid email")
	}
	if password == "" {
		return NewValidationError("password is required")
	}
	return nil
}

// ValidEmail reports whether address parses as a bare RFC 5322 address.
func ValidEmail(address string) bool {
	addr, err := mail.ParseAddress(address)
	return err == nil && addr.Address == address
}

// NormalizeEmail lowercases and trims an email for use as the login key.
func NormalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
