// Package httpapi exposes the pipeline's request-scoped HTTP surface:
// POST /api/image-flow, GET /api/image-proxy, and GET /health.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"imageflow/core"
	"imageflow/imagegen"
	"imageflow/logging"
	"imageflow/metrics"
	"imageflow/orchestrator"
	"imageflow/validator"
)

// runner is the subset of *orchestrator.Orchestrator the handler needs.
type runner interface {
	Run(ctx context.Context, req *validator.Request) (*orchestrator.Response, int)
}

// operationWrapper is the subset of *shutdown.Manager the handler needs: it
// tracks the call as in-flight so a graceful shutdown can drain it instead
// of cutting it off mid-synthesis.
type operationWrapper interface {
	WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error
}

// Handler serves the image-flow endpoint.
type Handler struct {
	orchestrator       runner
	maxReferenceImages int
	defaultAspectRatio imagegen.AspectRatio
	metrics            metrics.MetricsCollector
	shutdown           operationWrapper
	logger             *logging.Logger
}

// NewHandler builds a Handler from its collaborators. defaultAspectRatio is
// the operator-configured fallback substituted when a request omits
// aspectRatio entirely. metricsCollector may be nil, in which case the
// validate stage is simply not recorded. shutdownManager may be nil, in
// which case requests are not tracked as in-flight operations.
func NewHandler(orch runner, maxReferenceImages int, defaultAspectRatio imagegen.AspectRatio, metricsCollector metrics.MetricsCollector, shutdownManager operationWrapper, logger *logging.Logger) *Handler {
	return &Handler{
		orchestrator:       orch,
		maxReferenceImages: maxReferenceImages,
		defaultAspectRatio: defaultAspectRatio,
		metrics:            metricsCollector,
		shutdown:           shutdownManager,
		logger:             logger.Named("httpapi"),
	}
}

// RegisterRoutes wires the Handler's routes, plus the proxy gateway and
// health check, onto mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler, proxyHandler http.HandlerFunc) {
	mux.HandleFunc("/api/image-flow", h.handleImageFlow)
	mux.HandleFunc("/api/image-proxy", proxyHandler)
	mux.HandleFunc("/health", handleHealth)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleImageFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), core.RequestTimeout)
	defer cancel()

	validateStarted := time.Now()
	req, verrs := validator.Validate(r, h.maxReferenceImages, h.defaultAspectRatio)
	h.recordValidateStage(core.NewCorrelationID(), validateStarted, verrs)
	if verrs != nil {
		writeValidationError(w, verrs)
		return
	}

	var resp *orchestrator.Response
	var status int
	run := func(ctx context.Context) error {
		resp, status = h.orchestrator.Run(ctx, req)
		return nil
	}

	if h.shutdown != nil {
		if err := h.shutdown.WrapOperation(ctx, "image-flow", run); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "server is shutting down"})
			return
		}
	} else {
		run(ctx)
	}

	writeJSON(w, status, resp)
}

func (h *Handler) recordValidateStage(correlationID string, started time.Time, verrs validator.ValidationErrors) {
	if h.metrics == nil {
		return
	}

	status := metrics.RunStatusSuccess
	errMsg := ""
	if verrs != nil {
		status = metrics.RunStatusError
		errMsg = verrs.Error()
	}

	h.metrics.RecordRun(metrics.RunRecord{
		ID:        correlationID,
		Stage:     metrics.StageValidate,
		Status:    status,
		StartTime: started,
		EndTime:   time.Now(),
		Duration:  time.Since(started),
		ErrorMsg:  errMsg,
	})
}

func writeValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {
	issues := make([]map[string]string, len(errs))
	for i, e := range errs {
		issues[i] = map[string]string{"field": e.Field, "message": e.Message}
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "validation failed",
		"issues":  issues,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
