// Package server exposes the lease CCR solver as a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/config"
	"github.com/Kiel1mcc/lease-ccr-loop/internal/solver"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/Kiel1mcc/lease-ccr-loop/pkg/output"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the request id on every response.
const RequestIDHeader = "X-Request-Id"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	solver        *solver.Solver
	requests      *prometheus.CounterVec
}

// NewHandler constructs the HTTP handler that serves the solve API. Solver and
// request metrics are registered against registry, which also backs /metrics;
// a nil registry gets a private one.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, registry *prometheus.Registry) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leaseccr_http_requests_total",
		Help: "HTTP requests served by the lease CCR API, by endpoint and status code.",
	}, []string{"endpoint", "code"})
	registry.MustRegister(requests)

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		solver:        solver.NewSolver(logger, solver.NewMetrics(registry)),
		requests:      requests,
	}

	mux := http.NewServeMux()

	// Solve from a JSON body shaped like the YAML configuration
	mux.HandleFunc("/api/solve", h.handleSolve)

	// Solve from an uploaded YAML configuration file
	mux.HandleFunc("/api/solve/upload", h.handleSolveUpload)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return mux
}

type solveResponse struct {
	RequestID string         `json:"requestId"`
	Outcome   solver.Outcome `json:"outcome"`
	Error     string         `json:"error,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	CSV       string         `json:"csv"`
	Duration  string         `json:"duration"`
}

type errorResponse struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	requestID := newRequestID(w)
	if r.Method != http.MethodPost {
		h.respondErrorWithOp(w, requestID, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), op)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, requestID, statusForReadError(err), fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configBytes, err := yaml.Marshal(payload)
	if err != nil {
		h.respondErrorWithOp(w, requestID, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.runSolve(w, requestID, configBytes, start, op)
}

func (h *handler) handleSolveUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolveUpload"
	requestID := newRequestID(w)
	if r.Method != http.MethodPost {
		h.respondErrorWithOp(w, requestID, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), op)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		status := statusForReadError(err)
		msg := fmt.Sprintf("failed to parse upload: %v", err)
		if status == http.StatusRequestEntityTooLarge {
			msg = fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize)
		}
		h.respondErrorWithOp(w, requestID, status, msg, op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, requestID, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.String("requestId", requestID),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, requestID, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	h.runSolve(w, requestID, buf.Bytes(), start, op)
}

func (h *handler) runSolve(w http.ResponseWriter, requestID string, configBytes []byte, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, requestID, http.StatusBadRequest, err.Error(), op)
		return
	}

	opts, err := cfg.Options()
	if err != nil {
		h.respondErrorWithOp(w, requestID, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	outcome := h.solver.Solve(cfg.Parameters(), opts)

	var csv bytes.Buffer
	if err := output.CsvFormat(&csv, outcome); err != nil {
		h.respondErrorWithOp(w, requestID, http.StatusInternalServerError, fmt.Sprintf("failed to render history: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := solveResponse{
		RequestID: requestID,
		Outcome:   outcome,
		Warnings:  warnings,
		CSV:       csv.String(),
		Duration:  elapsed.String(),
	}

	status := http.StatusOK
	if outcome.Status == solver.StatusInvalidInput {
		status = http.StatusBadRequest
		response.Error = outcome.Err.Error()
	}

	h.logger.Info("solve request served",
		zap.String("op", op),
		zap.String("requestId", requestID),
		zap.String("status", string(outcome.Status)),
		zap.Int("iterations", outcome.Iterations),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, op, status, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleVersion"
	requestID := newRequestID(w)
	if r.Method != http.MethodGet {
		h.respondErrorWithOp(w, requestID, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), op)
		return
	}

	h.writeJSON(w, op, http.StatusOK, map[string]string{
		"requestId": requestID,
		"version":   h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHealth"
	requestID := newRequestID(w)
	if r.Method != http.MethodGet {
		h.respondErrorWithOp(w, requestID, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), op)
		return
	}

	h.writeJSON(w, op, http.StatusOK, map[string]string{
		"requestId": requestID,
		"status":    "ok",
	})
}

func newRequestID(w http.ResponseWriter) string {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)
	return id
}

func statusForReadError(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, requestID string, status int, msg string, op string) {
	h.logger.Error("solve request failed",
		zap.String("op", op),
		zap.String("requestId", requestID),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, op, status, errorResponse{RequestID: requestID, Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, op string, status int, payload interface{}) {
	h.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", op), zap.Error(err))
	}
}
