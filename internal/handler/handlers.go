// Package handler provides HTTP request handlers for the presentation API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

// MissionSession is the read/write surface the handlers need.
type MissionSession interface {
	Snapshot() *model.MissionSnapshot
	Reachability() model.ReachabilitySignal
	CreationAttempt() model.CreationAttempt
	SubmitMission(ctx context.Context, description string) (model.CreationAttempt, error)
	DismissCreation() bool
	ForceRefresh(ctx context.Context) *model.MissionSnapshot
	LookupMission(ctx context.Context, id string) (model.MissionRecord, error)
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	session      MissionSession
	errorHandler *apierrors.Handler
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(session MissionSession, errorHandler *apierrors.Handler, logger *zap.Logger) *Handlers {
	return &Handlers{
		session:      session,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// SubmitMissionRequest is the body of POST /v1/missions.
type SubmitMissionRequest struct {
	Description string `json:"description"`
}

// ReachabilityResponse is the body of GET /v1/reachability.
type ReachabilityResponse struct {
	Signal model.ReachabilitySignal `json:"signal"`
}

// ListMissions handles GET /v1/missions requests.
func (h *Handlers) ListMissions(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.session.Snapshot().View())
}

// GetMission handles GET /v1/missions/{mission_id} requests.
// It always asks the service rather than reading the snapshot.
func (h *Handlers) GetMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["mission_id"]

	record, err := h.session.LookupMission(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, record)
}

// SubmitMission handles POST /v1/missions requests.
func (h *Handlers) SubmitMission(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	var req SubmitMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.WriteValidationError(w, "invalid request body", requestID)
		return
	}

	attempt, err := h.session.SubmitMission(r.Context(), req.Description)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionInFlight) {
			h.errorHandler.WriteConflict(w, err.Error(), requestID)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusAccepted, attempt)
}

// GetCreation handles GET /v1/creation requests.
func (h *Handlers) GetCreation(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.session.CreationAttempt())
}

// DismissCreation handles DELETE /v1/creation requests.
func (h *Handlers) DismissCreation(w http.ResponseWriter, r *http.Request) {
	if !h.session.DismissCreation() {
		h.errorHandler.WriteConflict(w, service.ErrSubmissionInFlight.Error(), r.Header.Get("X-Request-ID"))
		return
	}
	h.writeJSONResponse(w, http.StatusOK, h.session.CreationAttempt())
}

// Refresh handles POST /v1/refresh requests.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	snap := h.session.ForceRefresh(r.Context())
	h.writeJSONResponse(w, http.StatusOK, snap.View())
}

// GetReachability handles GET /v1/reachability requests.
func (h *Handlers) GetReachability(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, ReachabilityResponse{Signal: h.session.Reachability()})
}

// writeJSONResponse writes a JSON response to the HTTP response writer.
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
