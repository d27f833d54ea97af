package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/visionedge/person-detection-service/detections"
	"github.com/visionedge/person-detection-service/logger"
	"github.com/visionedge/person-detection-service/models"
)

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelPath   string `json:"model_path"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newRouter(state *AppState) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", handleHealth(state)).Methods("GET")
	r.HandleFunc("/detect", handleDetect(state)).Methods("POST")
	r.HandleFunc("/info", handleInfo(state)).Methods("GET")
	r.Handle("/metrics", state.Metrics.Handler()).Methods("GET")
	return r
}

func handleHealth(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state.Metrics.RequestsTotal.WithLabelValues("health", "200").Inc()
		writeJSON(w, http.StatusOK, healthResponse{
			Status:      "healthy",
			ModelLoaded: state.ModelLoaded(),
			ModelPath:   state.Config.ModelPath,
		})
	}
}

func handleInfo(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !state.ModelLoaded() || state.ModelInfo == nil {
			state.Metrics.RequestsTotal.WithLabelValues("info", "500").Inc()
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: detections.ErrModelNotLoaded.Error()})
			return
		}
		state.Metrics.RequestsTotal.WithLabelValues("info", "200").Inc()
		writeJSON(w, http.StatusOK, state.ModelInfo)
	}
}

func handleDetect(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		log := logger.L().With(zap.String("request_id", requestID))

		if !state.ModelLoaded() {
			sendDetectError(state, w, detections.ErrModelNotLoaded)
			return
		}

		imageBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Warn("failed to read request body", zap.Error(err))
			sendDetectError(state, w, &detections.DecodeError{Cause: err})
			return
		}
		if len(imageBytes) == 0 {
			sendDetectError(state, w, detections.ErrNoImageData)
			return
		}

		confThreshold, err := parseThreshold(r, "confidence", state.Config.Confidence)
		if err != nil {
			sendDetectError(state, w, err)
			return
		}
		iouThreshold, err := parseThreshold(r, "iou", state.Config.IoU)
		if err != nil {
			sendDetectError(state, w, err)
			return
		}

		session, err := state.Pool.Acquire(r.Context())
		if err != nil {
			log.Error("failed to acquire session", zap.Error(err))
			sendDetectError(state, w, &detections.InferenceError{Cause: err})
			return
		}
		defer state.Pool.Release(session)

		timings := &models.ProcessingTimings{RequestID: requestID}
		result, err := state.Pipeline.Run(imageBytes, confThreshold, iouThreshold, session.Infer, timings)
		if err != nil {
			log.Warn("detection failed", zap.Error(err))
			sendDetectError(state, w, err)
			return
		}
		timings.Total = time.Since(start)

		observeTimings(state, timings)
		state.Metrics.DetectionsReturned.Observe(float64(result.Count))
		state.Metrics.RequestsTotal.WithLabelValues("detect", "200").Inc()

		log.Debug("detection complete",
			zap.Int("count", result.Count),
			zap.Duration("preprocess", timings.Preprocess),
			zap.Duration("inference", timings.Inference),
			zap.Duration("postprocess", timings.Postprocess),
			zap.Duration("suppression", timings.Suppression),
			zap.Duration("total", timings.Total))

		writeJSON(w, http.StatusOK, result)
	}
}

// parseThreshold reads a [0,1] query parameter, falling back to def when it
// is absent.
func parseThreshold(r *http.Request, name string, def float32) (float32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil || v < 0 || v > 1 {
		return 0, &detections.ParameterError{Name: name, Value: raw}
	}
	return float32(v), nil
}

func sendDetectError(state *AppState, w http.ResponseWriter, err error) {
	status := statusForError(err)
	state.Metrics.RequestsTotal.WithLabelValues("detect", strconv.Itoa(status)).Inc()
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError maps the pipeline error taxonomy onto response classes:
// caller mistakes are 400s, deployment and engine failures are 500s.
func statusForError(err error) int {
	var decodeErr *detections.DecodeError
	var paramErr *detections.ParameterError
	switch {
	case errors.Is(err, detections.ErrNoImageData),
		errors.As(err, &decodeErr),
		errors.As(err, &paramErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func observeTimings(state *AppState, t *models.ProcessingTimings) {
	state.Metrics.StageDuration.WithLabelValues("preprocess").Observe(t.Preprocess.Seconds())
	state.Metrics.StageDuration.WithLabelValues("inference").Observe(t.Inference.Seconds())
	state.Metrics.StageDuration.WithLabelValues("postprocess").Observe(t.Postprocess.Seconds())
	state.Metrics.StageDuration.WithLabelValues("suppression").Observe(t.Suppression.Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
