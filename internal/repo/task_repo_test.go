package repo

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	dom "taskboard/internal/domain"
	"taskboard/migrations"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTaskRepo runs the behaviour every TaskRepo backend must share.
func testTaskRepo(t *testing.T, newRepo func(t *testing.T) TaskRepo) {
	ctx := context.Background()

	t.Run("create assigns identity and timestamps", func(t *testing.T) {
		r := newRepo(t)
		a, err := r.Create(ctx, dom.Task{Name: "first"})
		require.NoError(t, err)
		b, err := r.Create(ctx, dom.Task{Name: "second", Completed: true})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Less(t, a.Number, b.Number)
		assert.False(t, a.CreatedAt.IsZero())
		assert.Equal(t, a.CreatedAt, a.UpdatedAt)
		assert.True(t, b.Completed)
	})

	t.Run("find by id and absent id", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, dom.Task{Name: "lookup"})
		require.NoError(t, err)

		got, err := r.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "lookup", got.Name)

		missing, err := r.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("find filters and keeps creation order", func(t *testing.T) {
		r := newRepo(t)
		for i, name := range []string{"a", "b", "c", "d"} {
			_, err := r.Create(ctx, dom.Task{Name: name, Completed: i%2 == 1})
			require.NoError(t, err)
		}

		all, err := r.Find(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, names(all))

		done, err := r.Find(ctx, ByCompleted(true))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "d"}, names(done))

		none, err := r.Find(ctx, ByName("zzz"))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		one, err := r.FindOne(ctx, ByCompleted(false))
		require.NoError(t, err)
		require.NotNil(t, one)
		assert.Equal(t, "a", one.Name)
	})

	t.Run("save persists and bumps updatedAt", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, dom.Task{Name: "draft"})
		require.NoError(t, err)

		created.Name = "final"
		created.Completed = true
		saved, err := r.Save(ctx, created)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "final", saved.Name)
		assert.True(t, saved.Completed)
		assert.True(t, saved.UpdatedAt.After(created.UpdatedAt))
		assert.Equal(t, created.CreatedAt, saved.CreatedAt)

		again, err := r.Save(ctx, *saved)
		require.NoError(t, err)
		assert.True(t, again.UpdatedAt.After(saved.UpdatedAt))

		gone, err := r.Save(ctx, dom.Task{ID: uuid.New(), Name: "ghost"})
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("delete one removes earliest match", func(t *testing.T) {
		r := newRepo(t)
		first, err := r.Create(ctx, dom.Task{Name: "dup"})
		require.NoError(t, err)
		second, err := r.Create(ctx, dom.Task{Name: "dup"})
		require.NoError(t, err)

		n, err := r.DeleteOne(ctx, ByName("dup"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		got, err := r.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
		got, err = r.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)

		n, err = r.DeleteOne(ctx, ByName("nothing"))
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("delete many", func(t *testing.T) {
		r := newRepo(t)
		for _, done := range []bool{true, false, true} {
			_, err := r.Create(ctx, dom.Task{Name: "t", Completed: done})
			require.NoError(t, err)
		}
		n, err := r.DeleteMany(ctx, ByCompleted(true))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		rest, err := r.Find(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.False(t, rest[0].Completed)
	})
}

func names(list []dom.Task) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Name
	}
	return out
}

func TestMemTaskRepo(t *testing.T) {
	testTaskRepo(t, func(t *testing.T) TaskRepo { return NewMemTaskRepo() })
}

func TestMemTaskRepoFrozenClockStillAdvancesUpdatedAt(t *testing.T) {
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemTaskRepo().WithClock(func() time.Time { return frozen })
	ctx := context.Background()

	created, err := r.Create(ctx, dom.Task{Name: "tick"})
	require.NoError(t, err)
	saved, err := r.Save(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, frozen.Add(time.Microsecond), saved.UpdatedAt)
}

func TestMemTaskRepoReturnsCopies(t *testing.T) {
	r := NewMemTaskRepo()
	ctx := context.Background()
	created, err := r.Create(ctx, dom.Task{Name: "orig"})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "orig", again.Name)
}

func TestMemTaskRepoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemTaskRepo().Find(ctx, Filter{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPGTaskRepo(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	require.NoError(t, err)
	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.Up(db, "."))
	require.NoError(t, db.Close())

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	testTaskRepo(t, func(t *testing.T) TaskRepo {
		_, err := pool.Exec(context.Background(), "TRUNCATE tasks")
		require.NoError(t, err)
		return NewPGTaskRepo(pool)
	})

	t.Run("check constraints map to validation errors", func(t *testing.T) {
		r := NewPGTaskRepo(pool)
		_, err := r.Create(context.Background(), dom.Task{Name: strings.Repeat("x", 201)})
		var ve *dom.ValidationError
		require.True(t, errors.As(err, &ve), "got %v", err)
		assert.Equal(t, dom.MsgNameTooLong, ve.Message)

		_, err = r.Create(context.Background(), dom.Task{Name: "  "})
		require.True(t, errors.As(err, &ve), "got %v", err)
		assert.Equal(t, dom.MsgNameRequired, ve.Message)
	})
}
