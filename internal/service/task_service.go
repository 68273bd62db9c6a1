package service

import (
	"context"
	"strconv"
	"strings"

	"taskboard/internal/cache"
	dom "taskboard/internal/domain"
	"taskboard/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CreateFields are the caller-supplied fields of a new task.
type CreateFields struct {
	Name      string
	Completed bool
}

// TaskService is the record store used by the HTTP layer: it validates
// writes, casts identity tokens and caches list reads.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

func (s *TaskService) Create(ctx context.Context, f CreateFields) (dom.Task, error) {
	name, err := dom.NormalizeName(f.Name)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Create(ctx, dom.Task{Name: name, Completed: f.Completed})
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

// FindByID returns nil when no task has the id, and a CastError when id is
// not a well-formed identity token.
func (s *TaskService) FindByID(ctx context.Context, id string) (*dom.Task, error) {
	uid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, uid)
}

func (s *TaskService) FindOne(ctx context.Context, f repo.Filter) (*dom.Task, error) {
	return s.repo.FindOne(ctx, f)
}

func (s *TaskService) Find(ctx context.Context, f repo.Filter) ([]dom.Task, error) {
	if f == (repo.Filter{}) {
		return s.cachedList(ctx, cache.ViewAll, f)
	}
	return s.repo.Find(ctx, f)
}

func (s *TaskService) FindCompleted(ctx context.Context) ([]dom.Task, error) {
	return s.cachedList(ctx, cache.ViewCompleted, repo.ByCompleted(true))
}

func (s *TaskService) FindPending(ctx context.Context) ([]dom.Task, error) {
	return s.cachedList(ctx, cache.ViewPending, repo.ByCompleted(false))
}

// Save revalidates t and writes it. Nothing is written if validation fails.
// It returns nil if the task no longer exists.
func (s *TaskService) Save(ctx context.Context, t dom.Task) (*dom.Task, error) {
	name, err := dom.NormalizeName(t.Name)
	if err != nil {
		return nil, err
	}
	t.Name = name
	saved, err := s.repo.Save(ctx, t)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return saved, nil
}

// ToggleCompletion flips Completed and persists the task.
func (s *TaskService) ToggleCompletion(ctx context.Context, t dom.Task) (*dom.Task, error) {
	t.Completed = !t.Completed
	return s.Save(ctx, t)
}

// DeleteByID reports whether a task was removed.
func (s *TaskService) DeleteByID(ctx context.Context, id string) (bool, error) {
	uid, err := ParseID(id)
	if err != nil {
		return false, err
	}
	n, err := s.DeleteOne(ctx, repo.ByID(uid))
	return n > 0, err
}

func (s *TaskService) DeleteOne(ctx context.Context, f repo.Filter) (int64, error) {
	n, err := s.repo.DeleteOne(ctx, f)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateCache(ctx)
	}
	return n, nil
}

func (s *TaskService) DeleteMany(ctx context.Context, f repo.Filter) (int64, error) {
	n, err := s.repo.DeleteMany(ctx, f)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateCache(ctx)
	}
	return n, nil
}

// ParseID casts an identity token. Malformed tokens yield a *domain.CastError.
func ParseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, &dom.CastError{Value: id, Path: "id"}
	}
	return uid, nil
}

// cachedList serves view from Redis, loading it from the repo on a miss.
// Callers share one load per view and generation. A load that overlaps a
// write is returned but not stored.
func (s *TaskService) cachedList(ctx context.Context, view cache.View, f repo.Filter) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.Find(ctx, f)
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return s.repo.Find(ctx, f)
	}
	key := string(view) + ":" + strconv.FormatInt(gen, 10)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		if list, err := s.cache.GetList(ctx, view); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.Find(ctx, f)
		if err != nil {
			return nil, err
		}
		_, _ = s.cache.SetListAt(ctx, view, list, gen)
		return list, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]dom.Task)
		out := make([]dom.Task, len(shared))
		copy(out, shared)
		return out, nil
	}
}

// invalidateCache runs after a committed write, so it ignores cancellation.
func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(context.WithoutCancel(ctx))
	}
}
