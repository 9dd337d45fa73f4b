package repo

import (
	"context"
	"database/sql"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

// ListActivity returns log entries newest first.
func (r Repo) ListActivity(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	query := `SELECT id,user_id,COALESCE(task_id,'') AS task_id,action,ts FROM activity_log ORDER BY ts DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ActivityLogEntry
	for rows.Next() {
		var e domain.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TaskID, &e.Action, &e.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// CountActivitySince counts entries strictly newer than the given RFC3339
// timestamp. An empty since counts everything.
func (r Repo) CountActivitySince(ctx context.Context, since string) (int, error) {
	var (
		row *sql.Row
	)
	if since == "" {
		row = r.DB.QueryRowContext(ctx, `SELECT count(*) FROM activity_log`)
	} else {
		row = r.DB.QueryRowContext(ctx, `SELECT count(*) FROM activity_log WHERE ts > ?`, since)
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// LatestActivityTimestamp returns the newest entry timestamp, or "" when the
// log is empty.
func (r Repo) LatestActivityTimestamp(ctx context.Context) (string, error) {
	var ts sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT MAX(ts) FROM activity_log`).Scan(&ts)
	if err != nil {
		return "", err
	}
	if !ts.Valid {
		return "", nil
	}
	return ts.String, nil
}
