// Package stream implements the server-sent events endpoint that pushes the
// full subscription list after every change.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

// EventName tags every snapshot event.
const EventName = "snapshot"

// DefaultKeepAlive is the interval of comment lines keeping idle connections open.
const DefaultKeepAlive = 30 * time.Second

// Handler serves GET /subscriptions/stream.
type Handler struct {
	log       *slog.Logger
	service   Service
	keepAlive time.Duration
}

// Service streams snapshots until ctx ends.
type Service interface {
	Subscribe(ctx context.Context) <-chan []models.Subscription
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		keepAlive: DefaultKeepAlive,
	}
}

// ServeHTTP godoc
// @Summary Live subscription list
// @Description Server-sent events. Each "snapshot" event carries the full list as JSON; the first one is sent right away.
// @Tags Subscriptions
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {array} models.Subscription
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions/stream [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.stream.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support flushing")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	snapshots := h.service.Subscribe(ctx)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	log.Debug("stream opened")
	for {
		select {
		case <-ctx.Done():
			log.Debug("stream closed")
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case list, ok := <-snapshots:
			if !ok {
				return
			}
			data, err := json.Marshal(list)
			if err != nil {
				log.Error("failed to encode snapshot", sl.Err(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventName, data); err != nil {
				log.Debug("client went away", sl.Err(err))
				return
			}
			flusher.Flush()
		}
	}
}
