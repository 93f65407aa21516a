// Package api serves read access to loan applications over HTTP alongside
// the health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
)

type Service interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ApplicationsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Summary, error)
	ApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.Summary, error)
}

type Handler struct {
	service Service
	logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log.WithFields(map[string]interface{}{"component": "api"})}
}

// Register mounts the application routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/applications", h.list)
	mux.HandleFunc("GET /api/v1/applications/{id}", h.get)
}

type response struct {
	Success bool                     `json:"success"`
	Data    interface{}              `json:"data,omitempty"`
	Error   *apperrors.StandardError `json:"error,omitempty"`
}

// list requires exactly one of customerId and status.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customer, status := q.Get("customerId"), q.Get("status")

	var (
		out []models.Summary
		err error
	)
	switch {
	case customer != "" && status != "":
		err = apperrors.NewValidationFailedError("filter by customerId or status, not both")
	case customer != "":
		var id uuid.UUID
		if id, err = validation.ParseUUID("customerId", customer); err == nil {
			out, err = h.service.ApplicationsByCustomer(r.Context(), id)
		}
	case status != "":
		out, err = h.service.ApplicationsByStatus(r.Context(), models.ApplicationStatus(status))
	default:
		err = apperrors.NewValidationFailedError("customerId or status is required")
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	if out == nil {
		out = []models.Summary{}
	}
	h.write(w, http.StatusOK, response{Success: true, Data: out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ParseUUID("id", r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	app, err := h.service.GetApplication(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, http.StatusOK, response{Success: true, Data: app})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	code := statusFor(stdErr.Code)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err.Error(),
		})
	}
	h.write(w, code, response{Error: stdErr})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeApplicationNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidState, apperrors.ErrCodeConcurrentOperation:
		return http.StatusConflict
	case apperrors.ErrCodeDependencyFailure, apperrors.ErrCodeDependencyDegraded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) write(w http.ResponseWriter, code int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("response encode failed", map[string]interface{}{"error": err.Error()})
	}
}
