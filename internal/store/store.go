// internal/store/store.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github-rank-tracker/internal/errors"
	"github-rank-tracker/internal/model"
)

const createRepositoryTable = `
CREATE TABLE IF NOT EXISTS repository(
    repo VARCHAR(255) PRIMARY KEY,
    owner VARCHAR(255) NOT NULL,
    position_cur INTEGER,
    position_prev INTEGER,
    stars INTEGER,
    watchers INTEGER,
    forks INTEGER,
    open_issues INTEGER,
    language VARCHAR(255))`

const createActivityTable = `
CREATE TABLE IF NOT EXISTS activity(
    id SERIAL PRIMARY KEY,
    repo VARCHAR(255) REFERENCES repository(repo) ON DELETE CASCADE,
    date DATE,
    commits INTEGER,
    authors TEXT)`

const insertRepository = `
INSERT INTO repository(repo, owner, position_cur, position_prev, stars, watchers, forks, open_issues, language)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const updateRepository = `
UPDATE repository
SET position_cur = $1,
    position_prev = $2,
    stars = $3,
    watchers = $4,
    forks = $5,
    open_issues = $6,
    language = $7
WHERE repo = $8`

const insertActivity = `
INSERT INTO activity(repo, date, commits, authors)
VALUES($1, $2, $3, $4)`

// Store is the persistence gateway. It is constructed around an already
// established pool; it never opens connections lazily.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store on top of the given connection pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{
		pool:   pool,
		logger: logger,
	}
}

// EnsureSchema idempotently creates the repository and activity tables.
// Safe to call on every cycle; a no-op when the tables already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range []string{createRepositoryTable, createActivityTable} {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return &apperrors.SchemaError{Err: err}
		}
	}
	return nil
}

// RankStates reads the persisted ranking state of every repository, keyed by
// full name. The pipeline calls this once, before any write of the cycle.
func (s *Store) RankStates(ctx context.Context) (map[string]model.RankState, error) {
	rows, err := s.pool.Query(ctx, `SELECT repo, position_cur, position_prev FROM repository`)
	if err != nil {
		return nil, fmt.Errorf("query rank states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]model.RankState)
	for rows.Next() {
		var repo string
		var state model.RankState
		if err := rows.Scan(&repo, &state.PositionCur, &state.PositionPrev); err != nil {
			return nil, fmt.Errorf("scan rank state: %w", err)
		}
		states[repo] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rank states: %w", err)
	}
	return states, nil
}

// ApplyRanking executes the reconciled directives one row at a time. Each row
// write is a single atomic statement; no cross-row transaction is needed.
func (s *Store) ApplyRanking(ctx context.Context, directives []model.RankingDirective) error {
	for _, d := range directives {
		row := d.Row
		var err error
		switch d.Kind {
		case model.DirectiveInsert:
			_, err = s.pool.Exec(ctx, insertRepository,
				row.FullName, row.Owner, row.PositionCur, row.PositionPrev,
				row.Stars, row.Watchers, row.Forks, row.OpenIssues, row.Language)
		case model.DirectiveUpdate:
			_, err = s.pool.Exec(ctx, updateRepository,
				row.PositionCur, row.PositionPrev,
				row.Stars, row.Watchers, row.Forks, row.OpenIssues, row.Language,
				row.FullName)
		}
		if err != nil {
			return fmt.Errorf("apply ranking for %s: %w", row.FullName, err)
		}
	}
	return nil
}

// ReplaceActivityWindow atomically swaps the entire activity table for the
// supplied records. On any failure the transaction rolls back and the prior
// window stays intact.
func (s *Store) ReplaceActivityWindow(ctx context.Context, records []model.ActivityRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &apperrors.TransactionError{Op: "replace activity window", Err: err}
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	if _, err := tx.Exec(ctx, `DELETE FROM activity`); err != nil {
		return &apperrors.TransactionError{Op: "replace activity window", Err: err}
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertActivity, r.Repo, r.Date, r.Commits, model.JoinAuthors(r.Authors))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return &apperrors.TransactionError{Op: "replace activity window", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &apperrors.TransactionError{Op: "replace activity window", Err: err}
	}
	s.logger.Debug("Activity window replaced", "rows", len(records))
	return nil
}

// TopRepositories returns every repository row ordered by current position.
func (s *Store) TopRepositories(ctx context.Context) ([]model.Repository, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT repo, owner, position_cur, position_prev, stars, watchers, forks, open_issues, language
		FROM repository
		ORDER BY position_cur`)
	if err != nil {
		return nil, fmt.Errorf("query top repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		var r model.Repository
		if err := rows.Scan(&r.FullName, &r.Owner, &r.PositionCur, &r.PositionPrev,
			&r.Stars, &r.Watchers, &r.Forks, &r.OpenIssues, &r.Language); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read top repositories: %w", err)
	}
	return repos, nil
}

// RepoActivity returns the activity rows of one repository, optionally bounded
// by inclusive since/until dates.
func (s *Store) RepoActivity(ctx context.Context, fullName string, since, until *time.Time) ([]model.ActivityRecord, error) {
	query, args := activityQuery(fullName, since, until)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		var rec model.ActivityRecord
		var authors string
		if err := rows.Scan(&rec.Date, &rec.Commits, &authors); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		rec.Repo = fullName
		rec.Authors = model.SplitAuthors(authors)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}
	return records, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// activityQuery builds the activity select for the requested date bounds.
func activityQuery(fullName string, since, until *time.Time) (string, []any) {
	query := `SELECT date, commits, authors FROM activity WHERE repo = $1`
	args := []any{fullName}

	switch {
	case since != nil && until != nil:
		query += ` AND date BETWEEN $2 AND $3`
		args = append(args, *since, *until)
	case since != nil:
		query += ` AND date >= $2`
		args = append(args, *since)
	case until != nil:
		query += ` AND date <= $2`
		args = append(args, *until)
	}

	query += ` ORDER BY date`
	return query, args
}
