// Package domain holds the core entities shared by every layer. Timestamps
// are RFC3339 strings in UTC so rows round-trip through SQLite unchanged.
package domain

// User is an identity. Role PENDING means registered but not yet approved.
type User struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Username           string `json:"username,omitempty"`
	Role               Role   `json:"role" enum:"BOSS,USER,PENDING"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// Task is a unit of work. AssigneeIDs may be empty; an unassigned task is
// visible only to its creator and the boss.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status" enum:"PENDING,IN_PROGRESS,COMPLETED"`
	Priority    Priority `json:"priority" enum:"HIGH,MEDIUM,LOW"`
	CreatorID   string   `json:"creator_id"`
	AssigneeIDs []string `json:"assignee_ids"`
	DueDate     string   `json:"due_date,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// Assigned reports whether the user appears in the task's assignee list.
func (t Task) Assigned(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ActivityLogEntry is one immutable audit record. TaskID is empty for
// identity-lifecycle events; the action text carries the human-readable
// description verbatim. IDs are monotonic so the feed has a stable order
// even when timestamps collide at second resolution.
type ActivityLogEntry struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	TaskID    string `json:"task_id,omitempty"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// APIKey is an automation credential. Only the SHA-256 hash is stored; the
// plaintext key is shown once at creation.
type APIKey struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"-"`
	CreatedAt string `json:"created_at"`
}
