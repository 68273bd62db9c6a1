package dto

import (
	"fmt"
	"strings"
	"time"
)

// DueAt parses a due date as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC.
type DueAt struct{ t *time.Time }

// UnmarshalText lets DueAt bind from the ?due= query string.
func (d *DueAt) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.t = nil
		return nil
	}
	layouts := []string{
		"2006-01-02",     // date only
		time.RFC3339,     // 2006-01-02T15:04:05Z07:00
		time.RFC3339Nano, // with nanoseconds
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			// If it was date-only (no time component), use start of day UTC
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("due: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d DueAt) Ptr() *time.Time { return d.t }

// CreateTaskRequest is the JSON body for POST /tasks. Name constraints are
// checked by the service so the error messages stay uniform.
type CreateTaskRequest struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
}

// TaskResponse is the wire record. ID is the sequential number so clients
// that expect an integer id can consume it; UUID is the identity token.
type TaskResponse struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OverdueResponse struct {
	Overdue bool `json:"overdue"`
}

type DeleteManyResponse struct {
	Deleted int64 `json:"deleted"`
}
