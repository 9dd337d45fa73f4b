package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/activity"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/config"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/lifecycle"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/policy"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/repo"
)

type Engine struct {
	DB       *sql.DB
	Repo     repo.Repo
	Activity activity.Recorder
	Config   *config.Config
	Now      func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:       db,
		Repo:     repo.Repo{DB: db},
		Activity: activity.Recorder{DB: db},
		Config:   cfg,
		Now:      time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// recorder shares the engine clock so log timestamps line up with the rows
// they describe.
func (e Engine) recorder() activity.Recorder {
	rec := e.Activity
	if rec.Now == nil {
		rec.Now = e.Now
	}
	return rec
}

// RegisterOptions are parameters for a self-service registration.
type RegisterOptions struct {
	Name     string
	Email    string
	Username string
	Password string
}

// Register creates a pending identity. The account cannot log in until a
// boss approves it, and the first session after approval must rotate the
// password.
func (e Engine) Register(ctx context.Context, opts RegisterOptions) (domain.User, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return domain.User{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(opts.Email) == "" {
		return domain.User{}, domain.ValidationError{Field: "email", Reason: "required"}
	}
	if err := lifecycle.ValidateNewPassword(opts.Password, opts.Password, e.Config.MinPasswordLength()); err != nil {
		return domain.User{}, err
	}
	if _, err := e.Repo.GetUserByEmail(ctx, opts.Email); err == nil {
		return domain.User{}, domain.ValidationError{Field: "email", Reason: "already registered"}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(opts.Name),
		Email:              strings.TrimSpace(opts.Email),
		Username:           strings.TrimSpace(opts.Username),
		Role:               domain.RolePending,
		MustChangePassword: true,
		CreatedAt:          e.now().UTC().Format(time.RFC3339),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertUser(ctx, tx, u, string(hash)); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login verifies credentials and lifecycle state. Unknown emails and wrong
// passwords return the same error so callers cannot probe for accounts.
func (e Engine) Login(ctx context.Context, email, password string) (domain.User, error) {
	u, hash, err := e.Repo.GetCredentials(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := lifecycle.CheckLogin(u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ApproveUser promotes a pending registration to the USER role and records
// the approval in the activity log.
func (e Engine) ApproveUser(ctx context.Context, callerID, targetID string) (domain.User, error) {
	caller, err := e.Repo.GetUser(ctx, callerID)
	if err != nil {
		return domain.User{}, err
	}
	target, err := e.Repo.GetUser(ctx, targetID)
	if err != nil {
		return domain.User{}, err
	}
	if err := lifecycle.CheckApprove(caller, target); err != nil {
		return domain.User{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.UpdateUserRole(ctx, tx, target.ID, domain.RoleUser); err != nil {
		return domain.User{}, err
	}
	if _, err := e.recorder().Log(ctx, tx, caller.ID, fmt.Sprintf("approved registration for %q", target.Name), ""); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	target.Role = domain.RoleUser
	return target, nil
}

// ChangePassword rotates a password and clears the forced-rotation flag.
func (e Engine) ChangePassword(ctx context.Context, userID, newPassword, confirm string) (domain.User, error) {
	u, err := e.Repo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if err := lifecycle.ValidateNewPassword(newPassword, confirm, e.Config.MinPasswordLength()); err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.UpdatePassword(ctx, tx, u.ID, string(hash), false); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	u.MustChangePassword = false
	return u, nil
}

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	CreatorID   string
	Title       string
	Description string
	Priority    string
	AssigneeIDs []string
	DueDate     string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return domain.Task{}, domain.ValidationError{Field: "title", Reason: "required"}
	}
	creator, err := e.Repo.GetUser(ctx, opts.CreatorID)
	if err != nil {
		return domain.Task{}, err
	}
	priority := domain.PriorityMedium
	if opts.Priority != "" {
		priority, err = domain.ParsePriority(opts.Priority)
		if err != nil {
			return domain.Task{}, domain.ValidationError{Field: "priority", Reason: err.Error()}
		}
	}
	now := e.now().UTC().Format(time.RFC3339)
	t := domain.Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(opts.Title),
		Description: opts.Description,
		Status:      domain.StatusPending,
		Priority:    priority,
		CreatorID:   creator.ID,
		AssigneeIDs: opts.AssigneeIDs,
		DueDate:     opts.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.AssigneeIDs == nil {
		t.AssigneeIDs = []string{}
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertTask(ctx, tx, t); err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if _, err := e.recorder().Log(ctx, tx, creator.ID, fmt.Sprintf("created task %q", t.Title), t.ID); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// TaskUpdateOptions carry the changed fields for an update. Nil pointers
// leave the field untouched.
type TaskUpdateOptions struct {
	ActorID     string
	TaskID      string
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeIDs *[]string
	DueDate     *string
}

// UpdateTask applies field changes after a mutate-permission check. Any
// change that moves the status gets the progress wording in the log; edits
// without a status change log as plain updates.
func (e Engine) UpdateTask(ctx context.Context, opts TaskUpdateOptions) (domain.Task, error) {
	actor, err := e.Repo.GetUser(ctx, opts.ActorID)
	if err != nil {
		return domain.Task{}, err
	}
	t, err := e.Repo.GetTask(ctx, opts.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if !policy.CanMutate(actor, t) {
		return domain.Task{}, domain.NotAuthorizedError{Action: "edit this task"}
	}
	if opts.Title != nil {
		if strings.TrimSpace(*opts.Title) == "" {
			return domain.Task{}, domain.ValidationError{Field: "title", Reason: "required"}
		}
		t.Title = strings.TrimSpace(*opts.Title)
	}
	if opts.Description != nil {
		t.Description = *opts.Description
	}
	if opts.Status != nil {
		status, err := domain.ParseStatus(*opts.Status)
		if err != nil {
			return domain.Task{}, domain.ValidationError{Field: "status", Reason: err.Error()}
		}
		t.Status = status
	}
	if opts.Priority != nil {
		priority, err := domain.ParsePriority(*opts.Priority)
		if err != nil {
			return domain.Task{}, domain.ValidationError{Field: "priority", Reason: err.Error()}
		}
		t.Priority = priority
	}
	if opts.AssigneeIDs != nil {
		t.AssigneeIDs = *opts.AssigneeIDs
		if t.AssigneeIDs == nil {
			t.AssigneeIDs = []string{}
		}
	}
	if opts.DueDate != nil {
		t.DueDate = *opts.DueDate
	}
	t.UpdatedAt = e.now().UTC().Format(time.RFC3339)

	action := fmt.Sprintf("updated task %q", t.Title)
	if opts.Status != nil {
		action = fmt.Sprintf("changed status of %q to %s", t.Title, t.Status)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return domain.Task{}, err
	}
	if _, err := e.recorder().Log(ctx, tx, actor.ID, action, t.ID); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// DeleteTask removes a task. Only the boss or the creator may delete; the
// log entry outlives the task row.
func (e Engine) DeleteTask(ctx context.Context, actorID, taskID string) error {
	actor, err := e.Repo.GetUser(ctx, actorID)
	if err != nil {
		return err
	}
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !policy.CanDelete(actor, t) {
		return domain.NotAuthorizedError{Action: "delete this task"}
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := e.Repo.DeleteTask(ctx, tx, t.ID); err != nil {
		return err
	}
	if _, err := e.recorder().Log(ctx, tx, actor.ID, fmt.Sprintf("deleted task %q", t.Title), t.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// VisibleTasks returns the actor's view of the task list, newest first,
// with the criteria applied after the visibility cut.
func (e Engine) VisibleTasks(ctx context.Context, actorID string, c policy.Criteria) ([]domain.Task, error) {
	actor, err := e.Repo.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	tasks, err := e.Repo.ListTasks(ctx, repo.TaskFilters{})
	if err != nil {
		return nil, err
	}
	return policy.VisibleTasks(actor, tasks, c), nil
}

// GetTask returns one task if the actor may view it.
func (e Engine) GetTask(ctx context.Context, actorID, taskID string) (domain.Task, error) {
	actor, err := e.Repo.GetUser(ctx, actorID)
	if err != nil {
		return domain.Task{}, err
	}
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if !policy.CanView(actor, t) {
		return domain.Task{}, repo.ErrNotFound
	}
	return t, nil
}

// Summary aggregates the actor's visible tasks for the dashboard cards.
type Summary struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	HighPriority int `json:"high_priority"`
}

func (e Engine) DashboardSummary(ctx context.Context, actorID string) (Summary, error) {
	tasks, err := e.VisibleTasks(ctx, actorID, policy.Criteria{})
	if err != nil {
		return Summary{}, err
	}
	var s Summary
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case domain.StatusPending:
			s.Pending++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusCompleted:
			s.Completed++
		}
		if t.Priority == domain.PriorityHigh {
			s.HighPriority++
		}
	}
	return s, nil
}

// RecentActivity returns the newest log entries.
func (e Engine) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = e.Config.PanelSize()
	}
	return e.Repo.ListActivity(ctx, limit)
}

// UnreadActivity reports how many entries are newer than the caller's last
// read marker, plus the current high-water timestamp to store as the new
// marker once the panel is opened.
func (e Engine) UnreadActivity(ctx context.Context, lastRead string) (int, string, error) {
	count, err := e.Repo.CountActivitySince(ctx, lastRead)
	if err != nil {
		return 0, "", err
	}
	latest, err := e.Repo.LatestActivityTimestamp(ctx)
	if err != nil {
		return 0, "", err
	}
	return count, latest, nil
}

// CreateAPIKey mints an automation credential for a user. The plaintext is
// returned once and never stored.
func (e Engine) CreateAPIKey(ctx context.Context, userID, name string) (domain.APIKey, string, error) {
	u, err := e.Repo.GetUser(ctx, userID)
	if err != nil {
		return domain.APIKey{}, "", err
	}
	plaintext := "tg_" + strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	key := domain.APIKey{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		Name:      name,
		KeyHash:   repo.HashAPIKey(plaintext),
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.APIKey{}, "", err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertAPIKey(ctx, tx, key); err != nil {
		return domain.APIKey{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return domain.APIKey{}, "", err
	}
	return key, plaintext, nil
}

// RevokeAPIKey deletes a key. A boss may revoke any key; everyone else only
// their own, with a not-found result for keys outside that scope.
func (e Engine) RevokeAPIKey(ctx context.Context, callerID, keyID string) error {
	caller, err := e.Repo.GetUser(ctx, callerID)
	if err != nil {
		return err
	}
	owner := caller.ID
	if caller.Role == domain.RoleBoss {
		owner = ""
	}
	return e.Repo.DeleteAPIKey(ctx, keyID, owner)
}

// Bootstrap creates the boss account if no boss exists yet. The account is
// flagged for password rotation on first login.
func (e Engine) Bootstrap(ctx context.Context, name, email, password string) (domain.User, error) {
	bosses, err := e.Repo.ListUsers(ctx, repo.UserFilters{Role: string(domain.RoleBoss)})
	if err != nil {
		return domain.User{}, err
	}
	if len(bosses) > 0 {
		return domain.User{}, domain.InvalidStateError{Reason: "a boss account already exists"}
	}
	if err := lifecycle.ValidateNewPassword(password, password, e.Config.MinPasswordLength()); err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:                 uuid.New().String(),
		Name:               name,
		Email:              email,
		Role:               domain.RoleBoss,
		MustChangePassword: true,
		CreatedAt:          e.now().UTC().Format(time.RFC3339),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertUser(ctx, tx, u, string(hash)); err != nil {
		return domain.User{}, fmt.Errorf("insert boss: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// PendingRegistrations lists accounts waiting for approval, for the boss
// review queue.
func (e Engine) PendingRegistrations(ctx context.Context, callerID string) ([]domain.User, error) {
	caller, err := e.Repo.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.CanApproveUsers(caller) {
		return nil, domain.NotAuthorizedError{Action: "review registrations"}
	}
	return e.Repo.ListUsers(ctx, repo.UserFilters{Role: string(domain.RolePending)})
}
