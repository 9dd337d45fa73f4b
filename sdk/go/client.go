package taskguardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal TaskGuard HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// User represents an account.
type User struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// Task represents the API task model.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	CreatorID   string   `json:"creator_id"`
	AssigneeIDs []string `json:"assignee_ids"`
	DueDate     string   `json:"due_date,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ActivityEntry represents one activity log record.
type ActivityEntry struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	TaskID    string `json:"task_id,omitempty"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// Unread is the notification badge state.
type Unread struct {
	Count  int    `json:"count"`
	Latest string `json:"latest,omitempty"`
}

// LoginResult holds a session token plus the logged-in user.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Register creates a pending account.
func (c *Client) Register(ctx context.Context, name, email, password string) (User, error) {
	body := map[string]any{"name": name, "email": email, "password": password}
	var resp User
	err := c.do(ctx, http.MethodPost, "v0/auth/register", body, &resp)
	return resp, err
}

// Login authenticates and stores the bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]any{"email": email, "password": password}
	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "v0/auth/login", body, &resp); err != nil {
		return resp, err
	}
	c.BearerToken = resp.Token
	return resp, nil
}

// ApproveUser approves a pending registration.
func (c *Client) ApproveUser(ctx context.Context, userID string) (User, error) {
	var resp User
	endpoint := fmt.Sprintf("v0/users/%s/approve", url.PathEscape(userID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// PendingUsers lists registrations awaiting approval.
func (c *Client) PendingUsers(ctx context.Context) ([]User, error) {
	var resp []User
	err := c.do(ctx, http.MethodGet, "v0/users/pending", nil, &resp)
	return resp, err
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, title, description, priority string, assigneeIDs []string) (Task, error) {
	body := map[string]any{
		"title":        title,
		"description":  description,
		"priority":     priority,
		"assignee_ids": assigneeIDs,
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks", body, &resp)
	return resp, err
}

// Tasks lists the caller's visible tasks with optional filters. Status and
// priority accept the ALL sentinel.
func (c *Client) Tasks(ctx context.Context, search, status, priority string) ([]Task, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if status != "" {
		q.Set("status", status)
	}
	if priority != "" {
		q.Set("priority", priority)
	}
	endpoint := "v0/tasks"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []Task
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// UpdateTaskStatus changes only the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID, status string) (Task, error) {
	var resp Task
	endpoint := fmt.Sprintf("v0/tasks/%s", url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPatch, endpoint, map[string]any{"status": status}, &resp)
	return resp, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	endpoint := fmt.Sprintf("v0/tasks/%s", url.PathEscape(taskID))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Activity returns recent activity log entries.
func (c *Client) Activity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	endpoint := "v0/activity"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []ActivityEntry
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// UnreadActivity returns the unread badge state relative to a marker.
func (c *Client) UnreadActivity(ctx context.Context, since string) (Unread, error) {
	endpoint := "v0/activity/unread"
	if since != "" {
		endpoint += "?since=" + url.QueryEscape(since)
	}
	var resp Unread
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
