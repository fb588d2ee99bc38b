package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

// MockSession is a mock implementation of MissionSession
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Snapshot() *model.MissionSnapshot {
	args := m.Called()
	return args.Get(0).(*model.MissionSnapshot)
}

func (m *MockSession) Reachability() model.ReachabilitySignal {
	args := m.Called()
	return args.Get(0).(model.ReachabilitySignal)
}

func (m *MockSession) CreationAttempt() model.CreationAttempt {
	args := m.Called()
	return args.Get(0).(model.CreationAttempt)
}

func (m *MockSession) SubmitMission(ctx context.Context, description string) (model.CreationAttempt, error) {
	args := m.Called(ctx, description)
	return args.Get(0).(model.CreationAttempt), args.Error(1)
}

func (m *MockSession) DismissCreation() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSession) ForceRefresh(ctx context.Context) *model.MissionSnapshot {
	args := m.Called(ctx)
	return args.Get(0).(*model.MissionSnapshot)
}

func (m *MockSession) LookupMission(ctx context.Context, id string) (model.MissionRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.MissionRecord), args.Error(1)
}

func newTestRouter(session MissionSession) *mux.Router {
	h := NewHandlers(session, apierrors.NewHandler(zap.NewNop()), zap.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/v1/missions", h.ListMissions).Methods(http.MethodGet)
	r.HandleFunc("/v1/missions", h.SubmitMission).Methods(http.MethodPost)
	r.HandleFunc("/v1/missions/{mission_id}", h.GetMission).Methods(http.MethodGet)
	r.HandleFunc("/v1/creation", h.GetCreation).Methods(http.MethodGet)
	r.HandleFunc("/v1/creation", h.DismissCreation).Methods(http.MethodDelete)
	r.HandleFunc("/v1/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/v1/reachability", h.GetReachability).Methods(http.MethodGet)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func testSnapshot() *model.MissionSnapshot {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return model.NewSnapshot(map[string]model.MissionRecord{
		"a": {ID: "a", Status: model.MissionQueued, LastUpdated: ts},
		"b": {ID: "b", Status: model.MissionCompleted, LastUpdated: ts.Add(time.Minute)},
	}, 7, ts)
}

func TestListMissions(t *testing.T) {
	s := &MockSession{}
	s.On("Snapshot").Return(testSnapshot())

	rec := serve(newTestRouter(s), http.MethodGet, "/v1/missions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view model.SnapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Missions, 2)
	assert.Equal(t, "b", view.Missions[0].ID)
	assert.Equal(t, 1, view.Counts[model.MissionQueued])
	assert.Equal(t, 0, view.Counts[model.MissionFailed])
	assert.Equal(t, uint64(7), view.Generation)
}

func TestSubmitMission(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		attempt    model.CreationAttempt
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "accepted",
			body:       `{"description":"patrol sector 7"}`,
			attempt:    model.CreationAttempt{State: model.CreationSucceeded, MissionID: "abc"},
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "blank",
			body:       `{"description":"  "}`,
			attempt:    model.CreationAttempt{State: model.CreationFailed},
			err:        apierrors.EmptyDescription(),
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPTY_DESCRIPTION",
		},
		{
			name:       "in flight",
			body:       `{"description":"again"}`,
			attempt:    model.CreationAttempt{State: model.CreationSubmitting},
			err:        service.ErrSubmissionInFlight,
			wantStatus: http.StatusConflict,
			wantCode:   "SUBMISSION_IN_FLIGHT",
		},
		{
			name:       "unreachable",
			body:       `{"description":"x"}`,
			attempt:    model.CreationAttempt{State: model.CreationFailed},
			err:        apierrors.Transport("refused", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "UNREACHABLE",
		},
		{
			name:       "service error",
			body:       `{"description":"x"}`,
			attempt:    model.CreationAttempt{State: model.CreationFailed},
			err:        apierrors.Service(500, "boom"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "SERVICE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockSession{}
			var req SubmitMissionRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			s.On("SubmitMission", mock.Anything, req.Description).Return(tt.attempt, tt.err)

			rec := serve(newTestRouter(s), http.MethodPost, "/v1/missions", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				var resp apierrors.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.wantCode, resp.ErrorCode)
			}
			s.AssertExpectations(t)
		})
	}
}

func TestSubmitMission_BadBody(t *testing.T) {
	s := &MockSession{}
	rec := serve(newTestRouter(s), http.MethodPost, "/v1/missions", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.AssertNotCalled(t, "SubmitMission", mock.Anything, mock.Anything)
}

func TestGetMission(t *testing.T) {
	s := &MockSession{}
	s.On("LookupMission", mock.Anything, "abc").Return(model.MissionRecord{ID: "abc", Status: model.MissionInProgress}, nil)
	s.On("LookupMission", mock.Anything, "nope").Return(model.MissionRecord{}, apierrors.NotFound("mission"))

	router := newTestRouter(s)

	rec := serve(router, http.MethodGet, "/v1/missions/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"IN_PROGRESS"`)

	rec = serve(router, http.MethodGet, "/v1/missions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resource not found")
}

func TestCreationEndpoints(t *testing.T) {
	s := &MockSession{}
	s.On("CreationAttempt").Return(model.CreationAttempt{State: model.CreationIdle})
	s.On("DismissCreation").Return(true).Once()
	s.On("DismissCreation").Return(false).Once()

	router := newTestRouter(s)

	rec := serve(router, http.MethodGet, "/v1/creation", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"IDLE"`)

	rec = serve(router, http.MethodDelete, "/v1/creation", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodDelete, "/v1/creation", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefreshAndReachability(t *testing.T) {
	s := &MockSession{}
	s.On("ForceRefresh", mock.Anything).Return(testSnapshot())
	s.On("Reachability").Return(model.ReachabilityUnreachable)

	router := newTestRouter(s)

	rec := serve(router, http.MethodPost, "/v1/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"generation":7`)

	rec = serve(router, http.MethodGet, "/v1/reachability", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"signal":"UNREACHABLE"}`, rec.Body.String())
}
