package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"maps-workflow/mapcheck/pkg/history"
)

var errNegativeKeep = errors.New("keep must be >= 0")

const runColumns = "id, map_path, map_checksum, started_at, duration_ns, outcome, aborted_by, rules"

const upsertRun = `
INSERT INTO runs (` + runColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    map_path = excluded.map_path,
    map_checksum = excluded.map_checksum,
    started_at = excluded.started_at,
    duration_ns = excluded.duration_ns,
    outcome = excluded.outcome,
    aborted_by = excluded.aborted_by,
    rules = excluded.rules
`

const deleteOldest = `
DELETE FROM runs WHERE id NOT IN (
    SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
)
`

// sqlStore holds the queries shared by the SQLite and PostgreSQL backends.
// Queries are written with ? placeholders and rewritten by rebind.
type sqlStore struct {
	db      *sql.DB
	backend string
	rebind  func(string) string
	logger  *slog.Logger
}

func (s *sqlStore) Save(ctx context.Context, run *history.Run) error {
	rules, err := json.Marshal(run.Rules)
	if err != nil {
		return history.NewStorageError(s.backend, "save", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(upsertRun),
		run.ID,
		run.MapPath,
		run.MapChecksum,
		run.StartedAt.UTC().UnixNano(),
		int64(run.Duration),
		run.Outcome,
		run.AbortedBy,
		string(rules),
	)
	if err != nil {
		return history.NewStorageError(s.backend, "save", err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*history.Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+runColumns+" FROM runs WHERE id = ?"), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, history.NewStorageError(s.backend, "get", err)
	}
	return run, nil
}

func (s *sqlStore) List(ctx context.Context, query *history.Query) ([]*history.Run, error) {
	if query == nil {
		query = &history.Query{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + runColumns + " FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	order := "DESC"
	if !query.Descending() {
		order = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started_at %s, id %s LIMIT ? OFFSET ?", order, order)
	args = append(args, query.EffectiveLimit(), query.Offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(sqlQuery), args...)
	if err != nil {
		return nil, history.NewStorageError(s.backend, "list", err)
	}
	defer rows.Close()

	runs := []*history.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, history.NewStorageError(s.backend, "scan", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError(s.backend, "list", err)
	}

	return runs, nil
}

func (s *sqlStore) Count(ctx context.Context, query *history.Query) (int64, error) {
	if query == nil {
		query = &history.Query{}
	}
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, s.rebind(sqlQuery), args...).Scan(&count); err != nil {
		return 0, history.NewStorageError(s.backend, "count", err)
	}
	return count, nil
}

func (s *sqlStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM runs WHERE started_at < ?"), cutoff.UTC().UnixNano())
	if err != nil {
		return 0, history.NewStorageError(s.backend, "delete_older_than", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError(s.backend, "delete_older_than", err)
	}
	return count, nil
}

func (s *sqlStore) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		return 0, history.NewStorageError(s.backend, "delete_oldest", errNegativeKeep)
	}

	result, err := s.db.ExecContext(ctx, s.rebind(deleteOldest), keep)
	if err != nil {
		return 0, history.NewStorageError(s.backend, "delete_oldest", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError(s.backend, "delete_oldest", err)
	}
	return count, nil
}

func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError(s.backend, "close", err)
	}
	s.logger.Info("history storage closed")
	return nil
}

func buildWhereClause(query *history.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.Since != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.Since.UTC().UnixNano())
	}
	if query.Until != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, query.Until.UTC().UnixNano())
	}
	if query.MapPath != "" {
		conditions = append(conditions, "map_path = ?")
		args = append(args, query.MapPath)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}

	return strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*history.Run, error) {
	var (
		run       history.Run
		startedAt int64
		duration  int64
		rules     []byte
	)
	err := row.Scan(
		&run.ID,
		&run.MapPath,
		&run.MapChecksum,
		&startedAt,
		&duration,
		&run.Outcome,
		&run.AbortedBy,
		&rules,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(duration)
	if err := json.Unmarshal(rules, &run.Rules); err != nil {
		return nil, fmt.Errorf("decode rules of run %s: %w", run.ID, err)
	}
	return &run, nil
}

// questionRebind leaves ? placeholders untouched.
func questionRebind(q string) string { return q }

// dollarRebind rewrites ? placeholders as $1, $2, ...
func dollarRebind(q string) string {
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
