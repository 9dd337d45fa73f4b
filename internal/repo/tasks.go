package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

const taskColumns = `id,title,COALESCE(description,'') AS description,status,priority,creator_id,COALESCE(due_date,'') AS due_date,created_at,updated_at`

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO tasks(id,title,description,status,priority,creator_id,due_date,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, nullable(t.Description), t.Status, t.Priority, t.CreatorID, nullable(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}
	return r.replaceAssignees(ctx, tx, t.ID, t.AssigneeIDs)
}

func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET title=?, description=?, status=?, priority=?, due_date=?, updated_at=? WHERE id=?`,
		t.Title, nullable(t.Description), t.Status, t.Priority, nullable(t.DueDate), t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return r.replaceAssignees(ctx, tx, t.ID, t.AssigneeIDs)
}

func (r Repo) replaceAssignees(ctx context.Context, tx *sql.Tx, taskID string, assignees []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_assignees WHERE task_id=?`, taskID); err != nil {
		return err
	}
	for _, id := range assignees {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO task_assignees(task_id,user_id) VALUES (?,?)`, taskID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r Repo) DeleteTask(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var t domain.Task
	err := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatorID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.AssigneeIDs, err = r.listAssignees(ctx, t.ID)
	return t, err
}

func (r Repo) listAssignees(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT user_id FROM task_assignees WHERE task_id=? ORDER BY user_id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type TaskFilters struct {
	Status     string
	Priority   string
	CreatorID  string
	AssigneeID string
	Limit      int
}

// ListTasks returns tasks newest first. Assignees are loaded in one pass over
// the join table rather than per row.
func (r Repo) ListTasks(ctx context.Context, f TaskFilters) ([]domain.Task, error) {
	var clauses []string
	var args []any
	if f.Status != "" && f.Status != domain.FilterAll {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.Priority != "" && f.Priority != domain.FilterAll {
		clauses = append(clauses, "priority=?")
		args = append(args, f.Priority)
	}
	if f.CreatorID != "" {
		clauses = append(clauses, "creator_id=?")
		args = append(args, f.CreatorID)
	}
	if f.AssigneeID != "" {
		clauses = append(clauses, "id IN (SELECT task_id FROM task_assignees WHERE user_id=?)")
		args = append(args, f.AssigneeID)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT ` + taskColumns + ` FROM tasks ` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatorID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.AssigneeIDs = []string{}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return res, nil
	}
	byID := make(map[string]int, len(res))
	for i, t := range res {
		byID[t.ID] = i
	}
	arows, err := r.DB.QueryContext(ctx, `SELECT task_id,user_id FROM task_assignees ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var taskID, userID string
		if err := arows.Scan(&taskID, &userID); err != nil {
			return nil, err
		}
		if i, ok := byID[taskID]; ok {
			res[i].AssigneeIDs = append(res[i].AssigneeIDs, userID)
		}
	}
	return res, arows.Err()
}

// CountTasksByStatus powers the dashboard summary.
func (r Repo) CountTasksByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, count(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		res[status] = count
	}
	return res, rows.Err()
}
