// Package client provides the HTTP gateway to the remote mission service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

const (
	opCreate   = "create_mission"
	opFetch    = "fetch_mission"
	opFetchAll = "fetch_all_missions"
	opProbe    = "probe_health"

	maxErrorBody = 64 << 10
)

// OutcomeObserver receives the classification of every gateway call.
// Begin is called when a call is issued and Complete exactly once when it ends.
type OutcomeObserver interface {
	Begin() uint64
	Complete(seq uint64, outcome model.Outcome) bool
}

// Recorder records per-call metrics.
type Recorder interface {
	RecordGatewayCall(operation string, outcome model.Outcome, duration time.Duration)
}

// CreateResult is the service's answer to a creation request.
type CreateResult struct {
	MissionID string `json:"mission_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type createRequest struct {
	Description string `json:"description"`
}

type listResponse struct {
	Missions []model.MissionPayload `json:"missions"`
}

type serviceErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MissionGateway talks to the remote mission service over HTTP/JSON.
// It never retries.
type MissionGateway struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	observer   OutcomeObserver
	recorder   Recorder
	logger     *zap.Logger
}

// NewMissionGateway creates a gateway for the service at cfg.BaseURL.
// recorder may be nil.
func NewMissionGateway(cfg config.RemoteConfig, observer OutcomeObserver, recorder Recorder, logger *zap.Logger) (*MissionGateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no remote base url provided")
	}
	if observer == nil {
		return nil, fmt.Errorf("outcome observer is required")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &MissionGateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		observer:   observer,
		recorder:   recorder,
		logger:     logger,
	}, nil
}

// CreateMission submits a new mission. A blank description fails locally
// without sending a request.
func (g *MissionGateway) CreateMission(ctx context.Context, description string) (CreateResult, error) {
	var result CreateResult

	description = strings.TrimSpace(description)
	if description == "" {
		seq := g.observer.Begin()
		g.observer.Complete(seq, model.OutcomeLocal)
		g.recorder.RecordGatewayCall(opCreate, model.OutcomeLocal, 0)
		return result, apierrors.EmptyDescription()
	}

	err := g.call(ctx, opCreate, http.MethodPost, "/missions", createRequest{Description: description}, &result)
	if err != nil {
		return CreateResult{}, err
	}
	return result, nil
}

// FetchMission fetches a single mission by id.
func (g *MissionGateway) FetchMission(ctx context.Context, id string) (model.MissionRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		seq := g.observer.Begin()
		g.observer.Complete(seq, model.OutcomeLocal)
		g.recorder.RecordGatewayCall(opFetch, model.OutcomeLocal, 0)
		return model.MissionRecord{}, apierrors.Validation(apierrors.ErrCodeInvalidArgument, "mission id must not be empty")
	}

	var payload model.MissionPayload
	if err := g.call(ctx, opFetch, http.MethodGet, "/missions/"+url.PathEscape(id), nil, &payload); err != nil {
		return model.MissionRecord{}, err
	}

	record, err := model.ParseRecord(payload)
	if err != nil {
		return model.MissionRecord{}, apierrors.BadResponse("service returned an invalid mission", err).
			WithDetail("mission_id", id)
	}
	return record, nil
}

// FetchAllMissions returns every mission the service knows about.
// Records are returned unvalidated; the snapshot store drops malformed ones.
func (g *MissionGateway) FetchAllMissions(ctx context.Context) ([]model.MissionPayload, error) {
	var resp listResponse
	if err := g.call(ctx, opFetchAll, http.MethodGet, "/missions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Missions, nil
}

// ProbeHealth checks that the service answers its health endpoint.
func (g *MissionGateway) ProbeHealth(ctx context.Context) error {
	return g.call(ctx, opProbe, http.MethodGet, "/health", nil, nil)
}

// call performs one request and reports its outcome exactly once.
func (g *MissionGateway) call(ctx context.Context, op, method, path string, body, out interface{}) error {
	seq := g.observer.Begin()
	start := time.Now()

	err := g.do(ctx, method, path, body, out)

	outcome := Classify(err)
	g.observer.Complete(seq, outcome)
	g.recorder.RecordGatewayCall(op, outcome, time.Since(start))
	return err
}

func (g *MissionGateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	caller := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apierrors.Validation(apierrors.ErrCodeInvalidArgument, fmt.Sprintf("failed to encode request: %v", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return apierrors.Validation(apierrors.ErrCodeInvalidArgument, fmt.Sprintf("failed to build request: %v", err))
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("remote request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return requestError(caller, err)
	}
	defer resp.Body.Close()

	g.logger.Debug("remote request completed",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return serviceError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTransportFailure(err) {
			return requestError(caller, err)
		}
		return apierrors.BadResponse("failed to decode service response", err).
			WithDetail("path", path)
	}

	if created, ok := out.(*CreateResult); ok && strings.TrimSpace(created.MissionID) == "" {
		return apierrors.BadResponse("service did not return a mission id", nil)
	}
	return nil
}

// Classify maps a gateway error to the outcome reported to the monitor.
func Classify(err error) model.Outcome {
	if err == nil {
		return model.OutcomeSuccess
	}
	switch apierrors.KindOf(err) {
	case apierrors.KindTransport:
		return model.OutcomeTransport
	case apierrors.KindValidation:
		return model.OutcomeLocal
	case apierrors.KindCanceled:
		return model.OutcomeCanceled
	default:
		return model.OutcomeService
	}
}

// requestError classifies a failed round trip. A caller that cancelled its
// own context tells us nothing about the service.
func requestError(caller context.Context, err error) error {
	if stderrors.Is(caller.Err(), context.Canceled) {
		return apierrors.Canceled("request to mission service cancelled", err)
	}
	return transportError(err)
}

func transportError(err error) error {
	if isTimeout(err) {
		return apierrors.Timeout("request to mission service timed out", err)
	}
	return apierrors.Transport("mission service unreachable", err)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// isTransportFailure reports whether a body read failed in the connection
// rather than in the JSON.
func isTransportFailure(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return true
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}

func serviceError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(raw))
	var body serviceErrorBody
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Error != "":
			message = body.Error
		case body.Message != "":
			message = body.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNotFound {
		err := apierrors.NotFound("mission")
		err.Message = message
		return err
	}
	return apierrors.Service(resp.StatusCode, message)
}

type nopRecorder struct{}

func (nopRecorder) RecordGatewayCall(string, model.Outcome, time.Duration) {}
