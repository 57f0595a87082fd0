// Package bulkdelete implements the endpoint that deletes the selected
// subscriptions in one request.
package bulkdelete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	subservice "github.com/sibintb/submanager/internal/services/subscription"
)

// Handler serves POST /subscriptions/bulk-delete.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service deletes several subscriptions.
type Service interface {
	RemoveMany(ctx context.Context, ids []string) (int, error)
}

// Request lists the ids to delete.
type Request struct {
	IDs []string `json:"ids"`
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Delete selected subscriptions
// @Description Deletes every listed subscription. Ids that no longer exist count as deleted.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Selected ids"
// @Success 200 {object} response.OKResponse{data=map[string]int}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions/bulk-delete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.bulkdelete.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	n, err := h.service.RemoveMany(r.Context(), req.IDs)
	if errors.Is(err, subservice.ErrNoIDs) {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("no subscriptions selected"))
		return
	}
	if err != nil {
		log.Error("failed to delete subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("some subscriptions could not be deleted"))
		return
	}

	log.Info("subscriptions deleted", slog.Int("count", n))
	render.JSON(w, r, response.OKWithData(map[string]int{"deleted": n}))
}
