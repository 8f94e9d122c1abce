package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/domain"
	"github.com/notifyhub/flagnotify/internal/notify"
	"github.com/notifyhub/flagnotify/internal/queue"
)

// ContentUpdatedRequest is the inbound payload for an update event.
type ContentUpdatedRequest struct {
	ItemID int64 `json:"item_id"`
}

// ContentUpdatedResponse reports whether the event produced a job or was
// absorbed by an existing pending entry.
type ContentUpdatedResponse struct {
	ItemID int64 `json:"item_id"`
	Queued bool  `json:"queued"`
}

// EventHandler receives content-update events from the content-management
// system and hands them to the debouncing publisher.
type EventHandler struct {
	publisher   *notify.Publisher
	logger      *zap.Logger
	onDebounced func()
}

func NewEventHandler(publisher *notify.Publisher, logger *zap.Logger, onDebounced func()) *EventHandler {
	if onDebounced == nil {
		onDebounced = func() {}
	}
	return &EventHandler{publisher: publisher, logger: logger, onDebounced: onDebounced}
}

// ContentUpdated handles POST /api/v1/events/content-updated.
// Always 202 on acceptance: the pipeline is fire-and-forget, so the only
// synchronous answer is whether this particular event enqueued a job.
func (h *EventHandler) ContentUpdated(w http.ResponseWriter, r *http.Request) {
	var req ContentUpdatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	queued, err := h.publisher.ContentUpdated(r.Context(), req.ItemID)
	if err != nil {
		h.logger.Warn("content-updated event failed",
			zap.String("correlation_id", GetCorrelationID(r.Context())),
			zap.Int64("item_id", req.ItemID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	if !queued {
		h.onDebounced()
	}

	respondJSON(w, http.StatusAccepted, ContentUpdatedResponse{ItemID: req.ItemID, Queued: queued})
}

// QueueHandler serves the JSON queue-depth snapshot.
type QueueHandler struct {
	q queue.Queue
}

func NewQueueHandler(q queue.Queue) *QueueHandler {
	return &QueueHandler{q: q}
}

// Depth handles GET /api/v1/queue.
func (h *QueueHandler) Depth(w http.ResponseWriter, r *http.Request) {
	depth, err := h.q.Depth(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"depth": depth})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidItemID):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQueueFull):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
