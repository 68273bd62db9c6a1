package repo

import (
	"context"

	dom "taskboard/internal/domain"

	"github.com/google/uuid"
)

// TaskRepo persists tasks. Lookups that match nothing return a nil task and
// a nil error.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dom.Task, error)
	FindOne(ctx context.Context, f Filter) (*dom.Task, error)
	Find(ctx context.Context, f Filter) ([]dom.Task, error)
	Save(ctx context.Context, t dom.Task) (*dom.Task, error)
	DeleteOne(ctx context.Context, f Filter) (int64, error)
	DeleteMany(ctx context.Context, f Filter) (int64, error)
}

// Filter is a conjunctive predicate over tasks. Nil fields match anything.
type Filter struct {
	ID        *uuid.UUID
	Name      *string
	Completed *bool
}

// ByID matches a single identity.
func ByID(id uuid.UUID) Filter { return Filter{ID: &id} }

// ByCompleted matches tasks with the given completion state.
func ByCompleted(done bool) Filter { return Filter{Completed: &done} }

// ByName matches tasks whose name equals name exactly.
func ByName(name string) Filter { return Filter{Name: &name} }

// Match reports whether t satisfies the filter.
func (f Filter) Match(t dom.Task) bool {
	if f.ID != nil && *f.ID != t.ID {
		return false
	}
	if f.Name != nil && *f.Name != t.Name {
		return false
	}
	if f.Completed != nil && *f.Completed != t.Completed {
		return false
	}
	return true
}
