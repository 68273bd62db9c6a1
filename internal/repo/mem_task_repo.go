package repo

import (
	"context"
	"sync"
	"time"

	dom "taskboard/internal/domain"

	"github.com/google/uuid"
)

// MemTaskRepo is an in-process TaskRepo. Tasks are kept in creation order.
type MemTaskRepo struct {
	mu    sync.Mutex
	tasks []dom.Task
	seq   int64
	now   func() time.Time
}

func NewMemTaskRepo() *MemTaskRepo {
	return &MemTaskRepo{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source. Used by tests.
func (r *MemTaskRepo) WithClock(now func() time.Time) *MemTaskRepo {
	r.now = now
	return r
}

func (r *MemTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	if err := ctx.Err(); err != nil {
		return dom.Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	now := r.now()
	t.ID = uuid.New()
	t.Number = r.seq
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *MemTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*dom.Task, error) {
	return r.FindOne(ctx, ByID(id))
}

func (r *MemTaskRepo) FindOne(ctx context.Context, f Filter) (*dom.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(f); i >= 0 {
		t := r.tasks[i]
		return &t, nil
	}
	return nil, nil
}

func (r *MemTaskRepo) Find(ctx context.Context, f Filter) ([]dom.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := []dom.Task{}
	for _, t := range r.tasks {
		if f.Match(t) {
			list = append(list, t)
		}
	}
	return list, nil
}

func (r *MemTaskRepo) Save(ctx context.Context, t dom.Task) (*dom.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ByID(t.ID))
	if i < 0 {
		return nil, nil
	}
	cur := &r.tasks[i]
	cur.Name = t.Name
	cur.Completed = t.Completed
	cur.UpdatedAt = r.nextStamp(cur.UpdatedAt)
	out := *cur
	return &out, nil
}

func (r *MemTaskRepo) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(f)
	if i < 0 {
		return 0, nil
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return 1, nil
}

func (r *MemTaskRepo) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tasks[:0]
	var n int64
	for _, t := range r.tasks {
		if f.Match(t) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return n, nil
}

func (r *MemTaskRepo) indexOf(f Filter) int {
	for i, t := range r.tasks {
		if f.Match(t) {
			return i
		}
	}
	return -1
}

// nextStamp returns the current time, or prev+1µs if the clock has not advanced.
func (r *MemTaskRepo) nextStamp(prev time.Time) time.Time {
	now := r.now()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}
