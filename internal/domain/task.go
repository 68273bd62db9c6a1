package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is the persisted entity. It does not depend on Gin, Postgres or Redis.
//
// ID is the opaque identity token; Number is a sequential id assigned at
// creation and used as the integer id on the wire.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Number    int64     `json:"number"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOverdue reports whether the task is still open and due is already in the past.
func (t Task) IsOverdue(due time.Time) bool {
	return t.IsOverdueAt(due, time.Now())
}

// IsOverdueAt is IsOverdue against an explicit current instant.
func (t Task) IsOverdueAt(due, now time.Time) bool {
	return !t.Completed && now.After(due)
}

// RawRecord is a task as received from the tasks endpoint.
type RawRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type Status string

const (
	StatusSuccess Status = "Success"
	StatusPending Status = "Pending"
)

// DoneSuffix is appended to the display name of completed tasks.
const DoneSuffix = " (DONE)"

// PresentationTask is the render-ready form of a RawRecord.
type PresentationTask struct {
	ID      int64  `json:"id" yaml:"id"`
	Display string `json:"display" yaml:"display"`
	Status  Status `json:"status" yaml:"status"`
}
