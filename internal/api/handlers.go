/**
 * @description
 * This file contains the HTTP handler functions for the waitlist-service.
 * Handlers are responsible for reading incoming requests, calling the intake
 * service, and mapping its errors onto the public JSON error contract.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/duckcross/waitlist-service/internal/app"
	"github.com/duckcross/waitlist-service/internal/domain"
)

// maxBodyBytes bounds the signup payload.
const maxBodyBytes = 64 << 10

const (
	msgSubscribed       = "Subscribed successfully"
	msgMissingFields    = "Missing fields"
	msgDuplicate        = "Email is already in mailing list"
	msgValidationFailed = "One or more fields failed validation"
	msgMalformedBody    = "Missing or invalid request body"
	msgInternal         = "Internal server error"
)

// Service is the subset of the intake service used by the handlers.
type Service interface {
	Submit(ctx context.Context, payload []byte, meta domain.RequestMetadata) (*domain.Subscriber, error)
	Stats(ctx context.Context) (*domain.SubscriberStats, error)
}

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleSubscribe handles a waitlist signup.
func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: msgMalformedBody})
		return
	}

	if _, err := h.service.Submit(r.Context(), body, RequestMetadataFromRequest(r)); err != nil {
		status, message := classifySubmitError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("subscribe failed", "error", err)
		}
		respondWithJSON(w, status, errorResponse{Error: message})
		return
	}

	respondWithJSON(w, http.StatusOK, messageResponse{Message: msgSubscribed})
}

// handleStats returns the subscriber count for operators.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to load subscriber stats", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// classifySubmitError maps intake errors onto a status code and public message.
func classifySubmitError(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrMalformedRequest):
		return http.StatusBadRequest, msgMalformedBody
	case errors.Is(err, app.ErrMissingFields):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, app.ErrDuplicateSubscriber):
		return http.StatusBadRequest, msgDuplicate
	case errors.Is(err, app.ErrValidationFailed):
		return http.StatusBadRequest, msgValidationFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
