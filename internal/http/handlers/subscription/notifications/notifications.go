// Package notifications implements the endpoint listing payments due within
// the next week.
package notifications

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
)

// Handler serves GET /notifications.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service lists upcoming payments.
type Service interface {
	Notifications(ctx context.Context) ([]dashboard.Notification, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Upcoming payments
// @Description Active subscriptions due today or within the next 7 days, soonest first.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.OKResponse{data=[]dashboard.Notification}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.notifications.ServeHTTP"

	list, err := h.service.Notifications(r.Context())
	if err != nil {
		h.log.Error("failed to load notifications",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load notifications"))
		return
	}
	render.JSON(w, r, response.OKWithData(list))
}
