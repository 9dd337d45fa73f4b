package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/config"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/db"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/engine"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/migrate"
)

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	if _, err := e.Bootstrap(context.Background(), "Boss", "boss@example.com", "bosspass"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	handler, err := New(Config{
		Engine:   e,
		BasePath: "/v0",
		Auth:     AuthConfig{JWTSecret: "test-secret"},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func loginAs(t *testing.T, srv *testServer, email, password string) map[string]string {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login %s status %d: %s", email, res.StatusCode, string(data))
	}
	var out LoginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + out.Token}
}

// registerAndApprove creates an account through the API and approves it as
// the boss, returning auth headers for the new user plus their ID.
func registerAndApprove(t *testing.T, srv *testServer, bossHdr map[string]string, name, email string) (map[string]string, string) {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret1",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	var u UserResponse
	if err := json.Unmarshal(data, &u); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/users/"+u.ID+"/approve", nil, bossHdr)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("approve status %d: %s", res.StatusCode, string(data))
	}
	return loginAs(t, srv, email, "secret1"), u.ID
}

func TestHealthIsOpen(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
}

func TestAuthRequired(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.StatusCode, string(data))
	}
}

func TestPendingLoginRejected(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/register", map[string]any{
		"name":     "Sami",
		"email":    "sami@example.com",
		"password": "secret1",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"email":    "sami@example.com",
		"password": "secret1",
	}, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for pending login, got %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error.Code != "pending_approval" {
		t.Fatalf("expected pending_approval code, got %s", string(data))
	}
}

func TestTaskCRUDAndVisibility(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	bossHdr := loginAs(t, srv, "boss@example.com", "bosspass")
	u1Hdr, u1ID := registerAndApprove(t, srv, bossHdr, "U1", "u1@example.com")
	u2Hdr, _ := registerAndApprove(t, srv, bossHdr, "U2", "u2@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title":        "Patrol Sector A",
		"priority":     "HIGH",
		"assignee_ids": []string{u1ID},
	}, u1Hdr)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// The boss sees the task, the unrelated user does not.
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, bossHdr)
	var list []TaskResponse
	if err := json.Unmarshal(data, &list); err != nil || len(list) != 1 {
		t.Fatalf("boss list: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, u2Hdr)
	if err := json.Unmarshal(data, &list); err != nil || len(list) != 0 {
		t.Fatalf("u2 list should be empty: %d %s", res.StatusCode, string(data))
	}

	// Case-insensitive search.
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks?search=patrol", nil, u1Hdr)
	if err := json.Unmarshal(data, &list); err != nil || len(list) != 1 {
		t.Fatalf("search: %d %s", res.StatusCode, string(data))
	}

	// Status-only update.
	res, data = doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/tasks/"+created.ID, map[string]any{
		"status": "IN_PROGRESS",
	}, u1Hdr)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update status %d: %s", res.StatusCode, string(data))
	}

	// A non-creator assignee cannot delete.
	res, data = doJSON(t, srv.Client(), http.MethodDelete, srv.URL+"/v0/tasks/"+created.ID, nil, u2Hdr)
	if res.StatusCode != http.StatusNotFound && res.StatusCode != http.StatusForbidden {
		t.Fatalf("u2 delete should fail, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodDelete, srv.URL+"/v0/tasks/"+created.ID, nil, u1Hdr)
	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		t.Fatalf("creator delete status %d: %s", res.StatusCode, string(data))
	}

	// Activity log recorded the lifecycle.
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/activity", nil, bossHdr)
	var entries []ActivityEntryResponse
	if err := json.Unmarshal(data, &entries); err != nil || len(entries) == 0 {
		t.Fatalf("activity: %d %s", res.StatusCode, string(data))
	}
	if entries[0].Action != `deleted task "Patrol Sector A"` {
		t.Fatalf("unexpected newest action %q", entries[0].Action)
	}
}

func TestSummaryAndUnread(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	bossHdr := loginAs(t, srv, "boss@example.com", "bosspass")
	u1Hdr, _ := registerAndApprove(t, srv, bossHdr, "U1", "u1@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "Lock gates", "priority": "HIGH",
	}, u1Hdr)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks/summary", nil, u1Hdr)
	var summary engine.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("summary: %d %s", res.StatusCode, string(data))
	}
	if summary.Total != 1 || summary.Pending != 1 || summary.HighPriority != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/activity/unread", nil, u1Hdr)
	var unread struct {
		Count  int    `json:"count"`
		Latest string `json:"latest"`
	}
	if err := json.Unmarshal(data, &unread); err != nil || unread.Count == 0 || unread.Latest == "" {
		t.Fatalf("unread: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/activity/unread?since="+unread.Latest, nil, u1Hdr)
	if err := json.Unmarshal(data, &unread); err != nil || unread.Count != 0 {
		t.Fatalf("unread after marker: %d %s", res.StatusCode, string(data))
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	bossHdr := loginAs(t, srv, "boss@example.com", "bosspass")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/apikeys", map[string]any{
		"name": "automation",
	}, bossHdr)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create key: %d %s", res.StatusCode, string(data))
	}
	var key APIKeyResponse
	if err := json.Unmarshal(data, &key); err != nil || key.Key == "" {
		t.Fatalf("expected plaintext key once: %s", string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{"X-Api-Key": key.Key})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("api key auth: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{"X-Api-Key": "tg_bogus"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bogus key should fail: %d %s", res.StatusCode, string(data))
	}
}

func TestAPIKeyRevokeScopedToOwner(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	bossHdr := loginAs(t, srv, "boss@example.com", "bosspass")
	u1Hdr, _ := registerAndApprove(t, srv, bossHdr, "U1", "u1@example.com")
	u2Hdr, _ := registerAndApprove(t, srv, bossHdr, "U2", "u2@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/apikeys", map[string]any{
		"name": "automation",
	}, u1Hdr)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create key: %d %s", res.StatusCode, string(data))
	}
	var key APIKeyResponse
	if err := json.Unmarshal(data, &key); err != nil {
		t.Fatalf("unmarshal key: %v", err)
	}

	// Another user cannot revoke it.
	res, data = doJSON(t, srv.Client(), http.MethodDelete, srv.URL+"/v0/apikeys/"+key.ID, nil, u2Hdr)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign revoke, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{"X-Api-Key": key.Key})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("key should still authenticate: %d %s", res.StatusCode, string(data))
	}

	// The boss can.
	res, data = doJSON(t, srv.Client(), http.MethodDelete, srv.URL+"/v0/apikeys/"+key.ID, nil, bossHdr)
	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		t.Fatalf("boss revoke status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{"X-Api-Key": key.Key})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked key should not authenticate: %d %s", res.StatusCode, string(data))
	}
}
