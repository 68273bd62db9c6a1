package repo

import (
	"context"
	"errors"
	"fmt"

	dom "taskboard/internal/domain"
	"taskboard/internal/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = "id, number, name, completed, created_at, updated_at"

// bumpUpdatedAt keeps updated_at strictly increasing even within one clock tick.
const bumpUpdatedAt = "GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')"

var constraintMessages = map[string]string{
	"tasks_name_required": dom.MsgNameRequired,
	"tasks_name_length":   dom.MsgNameTooLong,
}

type PGTaskRepo struct {
	db *pgxpool.Pool
	sq sq.StatementBuilderType
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db, sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query, args, err := r.sq.Insert("tasks").
		Columns("id", "name", "completed").
		Values(uuid.NewString(), t.Name, t.Completed).
		Suffix("RETURNING " + taskColumns).
		ToSql()
	if err != nil {
		return dom.Task{}, fmt.Errorf("build insert: %w", err)
	}
	out, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return dom.Task{}, translate(err)
	}
	return out, nil
}

func (r *PGTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*dom.Task, error) {
	return r.FindOne(ctx, ByID(id))
}

func (r *PGTaskRepo) FindOne(ctx context.Context, f Filter) (*dom.Task, error) {
	query, args, err := r.selectTasks(f).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *PGTaskRepo) Find(ctx context.Context, f Filter) ([]dom.Task, error) {
	query, args, err := r.selectTasks(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Save(ctx context.Context, t dom.Task) (*dom.Task, error) {
	query, args, err := r.sq.Update("tasks").
		Set("name", t.Name).
		Set("completed", t.Completed).
		Set("updated_at", sq.Expr(bumpUpdatedAt)).
		Where(sq.Eq{"id": t.ID.String()}).
		Suffix("RETURNING " + taskColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	out, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// DeleteOne removes the earliest created task matching f.
func (r *PGTaskRepo) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := r.sq.Select("id").From("tasks").
			Where(f.eq()).
			OrderBy("number").
			Limit(1).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build select: %w", err)
		}
		var id uuid.UUID
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		query, args, err = r.sq.Delete("tasks").Where(sq.Eq{"id": id.String()}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *PGTaskRepo) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	query, args, err := r.sq.Delete("tasks").Where(f.eq()).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}

func (r *PGTaskRepo) selectTasks(f Filter) sq.SelectBuilder {
	return r.sq.Select(taskColumns).From("tasks").Where(f.eq()).OrderBy("number")
}

// eq converts the filter to a squirrel predicate. An empty Eq renders as (1=1).
// UUIDs go in as strings: squirrel would expand a [16]byte into an IN list.
func (f Filter) eq() sq.Eq {
	eq := sq.Eq{}
	if f.ID != nil {
		eq["id"] = f.ID.String()
	}
	if f.Name != nil {
		eq["name"] = *f.Name
	}
	if f.Completed != nil {
		eq["completed"] = *f.Completed
	}
	return eq
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.Number, &t.Name, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// translate maps constraint and cast failures to the domain error types.
func translate(err error) error {
	if name, ok := utils.PGCheckViolation(err); ok {
		msg, known := constraintMessages[name]
		if !known {
			msg = err.Error()
		}
		return &dom.ValidationError{Field: "name", Message: msg}
	}
	if value, ok := utils.PGInvalidText(err); ok {
		return &dom.CastError{Value: value, Path: "id"}
	}
	return err
}
