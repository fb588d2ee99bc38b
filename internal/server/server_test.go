package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	"github.com/vaibhav-sd/MissionControlProject/internal/health"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

func remoteService() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case r.URL.Path == "/missions" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"mission_id":"abc123def456","status":"QUEUED","message":"ok"}`))
		case r.URL.Path == "/missions":
			w.Write([]byte(`{"missions":[{"mission_id":"abc123def456","status":"QUEUED","timestamp":"2024-05-01T10:00:00"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Mission not found"}`))
		}
	}))
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Remote: config.RemoteConfig{BaseURL: baseURL, Timeout: time.Second},
		Sync:   config.SyncConfig{PollInterval: time.Hour, SuccessDisplayWindow: time.Second},
		Server: config.ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		RateLimiter: config.RateLimiterConfig{
			Enabled:           true,
			RequestsPerSecond: 1000,
			BurstSize:         1000,
		},
		Metrics: config.MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
	}
}

func newTestServer(t *testing.T) (*Server, *service.Session) {
	t.Helper()
	remote := remoteService()
	t.Cleanup(remote.Close)

	cfg := testConfig(remote.URL)
	session, err := service.NewSession(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	srv := NewServer(cfg, session, zap.NewNop())
	srv.SetupRoutes()
	return srv, session
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_ReadinessFollowsReachability(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.GetHandler()

	rec := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(h, http.MethodPost, "/v1/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_SubmitAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.GetHandler()

	rec := do(h, http.MethodPost, "/v1/missions", `{"description":"patrol sector 7"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mission abc123de... created successfully!")

	rec = do(h, http.MethodGet, "/v1/missions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Missions []struct {
			ID     string `json:"mission_id"`
			Status string `json:"status"`
		} `json:"missions"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Missions, 1)
	assert.Equal(t, "abc123def456", body.Missions[0].ID)
	assert.Equal(t, 1, body.Counts["QUEUED"])

	rec = do(h, http.MethodPost, "/v1/missions", `{"description":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodGet, "/v1/missions/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UnknownRoutes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.GetHandler()

	rec := do(h, http.MethodGet, "/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "endpoint not found")

	rec = do(h, http.MethodPut, "/v1/missions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGRPCServer_HealthFollowsMonitor(t *testing.T) {
	monitor := health.NewReachabilityMonitor(zap.NewNop())
	gs := NewGRPCServer(config.GRPCConfig{KeepaliveTime: time.Minute, KeepaliveTimeout: 10 * time.Second}, monitor, zap.NewNop())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go gs.Serve(lis)
	defer gs.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: health.RemoteServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_UNKNOWN, resp.Status)

	monitor.Complete(monitor.Begin(), model.OutcomeSuccess)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: health.RemoteServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
