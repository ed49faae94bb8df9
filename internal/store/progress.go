package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/AlexMoto69/uplearn/internal/lock"
	"github.com/AlexMoto69/uplearn/internal/progress"
)

// ProgressRepo loads and atomically updates learner progression records.
type ProgressRepo struct {
	db      *sql.DB
	dialect string
	locker  lock.Locker
}

var progressColumns = []string{
	"in_progress", "completed", "quiz_counts",
	"last_quiz_date", "current_streak", "longest_streak",
	"last_daily_quiz_date", "total_score",
}

// Load returns the stored record of userID, normalized. A learner with no
// record reads as progress.Default().
func (r *ProgressRepo) Load(ctx context.Context, userID string) (progress.UserProgress, error) {
	return r.load(ctx, r.db, userID, false)
}

// Update runs fn on the current record and stores its result. The cycle
// holds the user's lock and one transaction; an error from fn, a failed
// write or a canceled ctx leaves the stored record untouched.
func (r *ProgressRepo) Update(ctx context.Context, userID string, fn func(progress.UserProgress) (progress.UserProgress, error)) (progress.UserProgress, error) {
	unlock, err := r.locker.Lock(ctx, "progress:"+userID)
	if err != nil {
		return progress.UserProgress{}, fmt.Errorf("lock progress of %s: %w", userID, err)
	}
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return progress.UserProgress{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := r.load(ctx, tx, userID, true)
	if err != nil {
		return progress.UserProgress{}, err
	}

	next, err := fn(current)
	if err != nil {
		return progress.UserProgress{}, err
	}
	next = next.Normalize()

	if err := r.save(ctx, tx, userID, next); err != nil {
		return progress.UserProgress{}, err
	}
	if err := tx.Commit(); err != nil {
		return progress.UserProgress{}, fmt.Errorf("commit progress: %w", err)
	}
	return next, nil
}

// Reset deletes the stored record of userID. It reports whether a record
// existed.
func (r *ProgressRepo) Reset(ctx context.Context, userID string) (bool, error) {
	unlock, err := r.locker.Lock(ctx, "progress:"+userID)
	if err != nil {
		return false, fmt.Errorf("lock progress of %s: %w", userID, err)
	}
	defer unlock()

	query, args := entsql.Dialect(r.dialect).
		Delete(progressTable).
		Where(entsql.EQ("user_id", userID)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete progress of %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete progress of %s: %w", userID, err)
	}
	return n > 0, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ProgressRepo) load(ctx context.Context, q querier, userID string, forUpdate bool) (progress.UserProgress, error) {
	b := entsql.Dialect(r.dialect)
	t := b.Table(progressTable)
	sel := b.Select(progressColumns...).From(t).Where(entsql.EQ(t.C("user_id"), userID))
	if forUpdate && r.dialect == dialect.Postgres {
		sel.ForUpdate()
	}
	query, args := sel.Query()

	var (
		inProgress, completed, counts string
		lastQuiz, lastDaily           sql.NullString
		p                             = progress.Default()
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&inProgress, &completed, &counts,
		&lastQuiz, &p.CurrentStreak, &p.LongestStreak,
		&lastDaily, &p.TotalScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.Default(), nil
	}
	if err != nil {
		return progress.UserProgress{}, fmt.Errorf("load progress of %s: %w", userID, err)
	}

	if p.InProgress, err = decodeModules(inProgress); err != nil {
		return progress.UserProgress{}, fmt.Errorf("decode in_progress: %w", err)
	}
	if p.Completed, err = decodeModules(completed); err != nil {
		return progress.UserProgress{}, fmt.Errorf("decode completed: %w", err)
	}
	if counts != "" {
		if err := json.Unmarshal([]byte(counts), &p.QuizCounts); err != nil {
			return progress.UserProgress{}, fmt.Errorf("decode quiz_counts: %w", err)
		}
	}
	if p.QuizCounts == nil {
		p.QuizCounts = map[progress.ModuleID]int{}
	}
	if p.LastQuizDate, err = progress.ParseDate(lastQuiz.String); err != nil {
		return progress.UserProgress{}, err
	}
	if p.LastDailyQuizDate, err = progress.ParseDate(lastDaily.String); err != nil {
		return progress.UserProgress{}, err
	}
	return p.Normalize(), nil
}

func (r *ProgressRepo) save(ctx context.Context, e execer, userID string, p progress.UserProgress) error {
	inProgress, err := json.Marshal(p.InProgress.Sorted())
	if err != nil {
		return fmt.Errorf("encode in_progress: %w", err)
	}
	completed, err := json.Marshal(p.Completed.Sorted())
	if err != nil {
		return fmt.Errorf("encode completed: %w", err)
	}
	counts, err := json.Marshal(p.QuizCounts)
	if err != nil {
		return fmt.Errorf("encode quiz_counts: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(progressTable).
		Columns(slices.Concat([]string{"user_id"}, progressColumns, []string{"updated_at"})...).
		Values(
			userID,
			string(inProgress),
			string(completed),
			string(counts),
			nullDate(p.LastQuizDate),
			p.CurrentStreak,
			p.LongestStreak,
			nullDate(p.LastDailyQuizDate),
			p.TotalScore,
			time.Now().UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := e.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress of %s: %w", userID, err)
	}
	return nil
}

func decodeModules(raw string) (progress.ModuleSet, error) {
	if raw == "" {
		return progress.ModuleSet{}, nil
	}
	var ids []progress.ModuleID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return progress.NewModuleSet(ids...), nil
}

func nullDate(t time.Time) sql.NullString {
	s := progress.FormatDate(t)
	return sql.NullString{String: s, Valid: s != ""}
}
