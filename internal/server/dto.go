package server

import (
	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name" example:"Sami"`
	Email    string `json:"email" format:"email" example:"sami@example.com"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" format:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Username           string `json:"username,omitempty"`
	Role               string `json:"role" enum:"BOSS,USER,PENDING"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
	CreatedAt          string `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty" enum:"HIGH,MEDIUM,LOW"`
	AssigneeIDs []string `json:"assignee_ids,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty" enum:"PENDING,IN_PROGRESS,COMPLETED"`
	Priority    *string   `json:"priority,omitempty" enum:"HIGH,MEDIUM,LOW"`
	AssigneeIDs *[]string `json:"assignee_ids,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
}

type TaskResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status" enum:"PENDING,IN_PROGRESS,COMPLETED"`
	Priority    string   `json:"priority" enum:"HIGH,MEDIUM,LOW"`
	CreatorID   string   `json:"creator_id"`
	AssigneeIDs []string `json:"assignee_ids"`
	DueDate     string   `json:"due_date,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type ActivityEntryResponse struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	TaskID    string `json:"task_id,omitempty"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

type APIKeyResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at"`
	// Key is only present in the creation response.
	Key string `json:"key,omitempty"`
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Username:           u.Username,
		Role:               string(u.Role),
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
	}
}

func mapUsers(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	return out
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatorID:   t.CreatorID,
		AssigneeIDs: nonNilSlice(t.AssigneeIDs),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func mapTasks(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return out
}

func activityResponse(e domain.ActivityLogEntry) ActivityEntryResponse {
	return ActivityEntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		TaskID:    e.TaskID,
		Action:    e.Action,
		Timestamp: e.Timestamp,
	}
}

func mapActivity(entries []domain.ActivityLogEntry) []ActivityEntryResponse {
	out := make([]ActivityEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityResponse(e))
	}
	return out
}

func apiKeyResponse(k domain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:        k.ID,
		UserID:    k.UserID,
		Name:      k.Name,
		CreatedAt: k.CreatedAt,
	}
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
