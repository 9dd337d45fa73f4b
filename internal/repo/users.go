package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

const userColumns = `id,name,email,COALESCE(username,'') AS username,role,must_change_password,created_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var role string
	var mustChange int
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &role, &mustChange, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return u, err
	}
	u.Role = parsed
	u.MustChangePassword = mustChange != 0
	return u, nil
}

func (r Repo) InsertUser(ctx context.Context, tx *sql.Tx, u domain.User, passwordHash string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO users(id,name,email,username,password_hash,role,must_change_password,created_at) VALUES (?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, nullable(u.Username), passwordHash, u.Role, boolInt(u.MustChangePassword), u.CreatedAt)
	return err
}

func (r Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func (r Repo) GetUserTx(ctx context.Context, tx *sql.Tx, id string) (domain.User, error) {
	return scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

// GetUserByEmail matches case-insensitively; emails are stored as entered.
func (r Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=?`, strings.ToLower(strings.TrimSpace(email))))
}

// GetCredentials returns the user plus their password hash for verification.
func (r Repo) GetCredentials(ctx context.Context, email string) (domain.User, string, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+`,password_hash FROM users WHERE lower(email)=?`, strings.ToLower(strings.TrimSpace(email)))
	var u domain.User
	var role, hash string
	var mustChange int
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &role, &mustChange, &u.CreatedAt, &hash)
	if err == sql.ErrNoRows {
		return u, "", ErrNotFound
	}
	if err != nil {
		return u, "", err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return u, "", err
	}
	u.Role = parsed
	u.MustChangePassword = mustChange != 0
	return u, hash, nil
}

type UserFilters struct {
	Role string
}

func (r Repo) ListUsers(ctx context.Context, f UserFilters) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if f.Role != "" {
		query += ` WHERE role=?`
		args = append(args, f.Role)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		var u domain.User
		var role string
		var mustChange int
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &role, &mustChange, &u.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		u.Role = parsed
		u.MustChangePassword = mustChange != 0
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r Repo) UpdateUserRole(ctx context.Context, tx *sql.Tx, id string, role domain.Role) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET role=? WHERE id=?`, role, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdatePassword(ctx context.Context, tx *sql.Tx, id, passwordHash string, mustChange bool) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash=?, must_change_password=? WHERE id=?`,
		passwordHash, boolInt(mustChange), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
