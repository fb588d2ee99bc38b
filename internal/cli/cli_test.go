package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

// remoteService serves a single mission and accepts submissions.
type remoteService struct {
	mu        sync.Mutex
	submitted []string
}

func (rs *remoteService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/health":
		w.Write([]byte(`{"status":"healthy"}`))
	case r.URL.Path == "/missions" && r.Method == http.MethodPost:
		var body struct {
			Description string `json:"description"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		rs.mu.Lock()
		rs.submitted = append(rs.submitted, body.Description)
		rs.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"mission_id":"abc123def456","status":"QUEUED","message":"queued"}`))
	case r.URL.Path == "/missions":
		w.Write([]byte(`{"missions":[{"mission_id":"abc123def456","status":"IN_PROGRESS","timestamp":"2024-05-01T10:00:00"}]}`))
	case r.URL.Path == "/missions/abc123def456":
		w.Write([]byte(`{"mission_id":"abc123def456","status":"IN_PROGRESS","timestamp":"2024-05-01T10:00:00"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Mission not found"}`))
	}
}

func startRemote(t *testing.T) (*remoteService, string) {
	t.Helper()
	rs := &remoteService{}
	srv := httptest.NewServer(rs)
	t.Cleanup(srv.Close)
	return rs, srv.URL
}

func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MISSIONCTL_REMOTE_BASE_URL", baseURL)
	t.Setenv("MISSIONCTL_REMOTE_TIMEOUT", "1s")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubmitCommand(t *testing.T) {
	rs, url := startRemote(t)

	out, err := runCLI(t, url, "submit", "patrol", "sector", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Mission abc123de... created successfully!")

	rs.mu.Lock()
	defer rs.mu.Unlock()
	assert.Equal(t, []string{"patrol sector 7"}, rs.submitted)
}

func TestSubmitCommand_BlankDescription(t *testing.T) {
	rs, url := startRemote(t)

	out, err := runCLI(t, url, "-o", "json", "submit", "   ")
	require.Error(t, err)

	var attempt model.CreationAttempt
	require.NoError(t, json.Unmarshal([]byte(out), &attempt))
	assert.Equal(t, model.CreationFailed, attempt.State)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	assert.Empty(t, rs.submitted)
}

func TestStatusCommand_JSON(t *testing.T) {
	_, url := startRemote(t)

	out, err := runCLI(t, url, "status", "-o", "json")
	require.NoError(t, err)

	var report StatusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, model.ReachabilityReachable, report.Reachability)
	require.Len(t, report.Missions, 1)
	assert.Equal(t, "abc123def456", report.Missions[0].ID)
	assert.Equal(t, 1, report.Counts[model.MissionInProgress])
	assert.Equal(t, 0, report.Counts[model.MissionQueued])
}

func TestStatusCommand_YAML(t *testing.T) {
	_, url := startRemote(t)

	out, err := runCLI(t, url, "list", "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "REACHABLE", doc["reachability"])
	assert.Contains(t, doc, "missions")
}

func TestStatusCommand_Unreachable(t *testing.T) {
	remote := httptest.NewServer(http.NotFoundHandler())
	url := remote.URL
	remote.Close()

	out, err := runCLI(t, url, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "CONNECTION LOST")
	assert.Contains(t, out, "No missions yet")
}

func TestGetCommand(t *testing.T) {
	_, url := startRemote(t)

	out, err := runCLI(t, url, "get", "abc123def456")
	require.NoError(t, err)
	assert.Contains(t, out, "IN_PROGRESS")

	_, err = runCLI(t, url, "get", "missing")
	require.Error(t, err)
	assert.Equal(t, "Resource not found", err.Error())
}

func TestHealthCommand(t *testing.T) {
	_, url := startRemote(t)

	out, err := runCLI(t, url, "health", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"reachability":"REACHABLE","remote":"`+url+`"}`, out)

	remote := httptest.NewServer(http.NotFoundHandler())
	down := remote.URL
	remote.Close()

	_, err = runCLI(t, down, "health")
	assert.ErrorContains(t, err, "unreachable")
}

func TestUnsupportedOutput(t *testing.T) {
	_, url := startRemote(t)

	_, err := runCLI(t, url, "status", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func newConsole(t *testing.T, url string) (*Console, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Remote: config.RemoteConfig{BaseURL: url, Timeout: time.Second},
		Sync:   config.SyncConfig{PollInterval: time.Hour, SuccessDisplayWindow: time.Hour},
	}
	session, err := service.NewSession(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	var buf bytes.Buffer
	c := NewConsole(session, zap.NewNop())
	c.SetOutput(&buf)
	return c, &buf
}

func TestConsole_Handle(t *testing.T) {
	_, url := startRemote(t)
	c, buf := newConsole(t, url)
	ctx := context.Background()

	out, quit := c.Handle(ctx, "   ")
	assert.Empty(t, out)
	assert.False(t, quit)

	out, _ = c.Handle(ctx, "feedback")
	assert.Contains(t, out, "No recent submission")

	out, _ = c.Handle(ctx, "list")
	assert.Contains(t, out, "No missions yet")

	out, _ = c.Handle(ctx, "submit survey the ridge")
	assert.Contains(t, out, "created successfully")
	assert.Contains(t, buf.String(), "SECURE CONNECTION")

	out, _ = c.Handle(ctx, "list")
	assert.Contains(t, out, "abc123de...")

	out, _ = c.Handle(ctx, "feedback")
	assert.Contains(t, out, "created successfully")

	out, _ = c.Handle(ctx, "dismiss")
	assert.Contains(t, out, "Cleared")

	out, _ = c.Handle(ctx, "get missing")
	assert.Contains(t, out, "Resource not found")

	out, _ = c.Handle(ctx, "get")
	assert.Contains(t, out, "usage")

	out, _ = c.Handle(ctx, "launch")
	assert.Contains(t, out, `unknown command "launch"`)

	out, quit = c.Handle(ctx, "EXIT")
	assert.Equal(t, "Goodbye!", out)
	assert.True(t, quit)
}

func TestConsole_BlankSubmit(t *testing.T) {
	_, url := startRemote(t)
	c, _ := newConsole(t, url)

	out, _ := c.Handle(context.Background(), "submit")
	assert.Contains(t, out, "❌")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}, "stderr")
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger = NewLogger(config.LoggingConfig{Level: "bogus", Format: "json"}, "stderr")
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}
