// Package activity appends immutable audit entries for every mutation.
// Entries are written inside the caller's transaction so a rolled-back
// mutation never leaves a log row behind.
package activity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

type Recorder struct {
	DB  *sql.DB
	Now func() time.Time
}

// Log appends one entry describing a mutation. taskID may be empty for
// identity-lifecycle events such as approvals.
func (r Recorder) Log(ctx context.Context, tx *sql.Tx, userID, action, taskID string) (domain.ActivityLogEntry, error) {
	if userID == "" {
		return domain.ActivityLogEntry{}, errors.New("user_id required")
	}
	if action == "" {
		return domain.ActivityLogEntry{}, errors.New("action required")
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	entry := domain.ActivityLogEntry{
		UserID:    userID,
		TaskID:    taskID,
		Action:    action,
		Timestamp: now().UTC().Format(time.RFC3339),
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO activity_log(user_id,task_id,action,ts) VALUES (?,?,?,?)`,
		entry.UserID, nullable(entry.TaskID), entry.Action, entry.Timestamp)
	if err != nil {
		return domain.ActivityLogEntry{}, err
	}
	entry.ID, err = res.LastInsertId()
	if err != nil {
		return domain.ActivityLogEntry{}, err
	}
	return entry, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
