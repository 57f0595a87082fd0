// Package dashboard implements the endpoint returning the spend statistics,
// the category breakdown and the upcoming payments.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	views "github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
)

// Handler serves GET /dashboard.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service computes the dashboard.
type Service interface {
	Dashboard(ctx context.Context) (views.Dashboard, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Dashboard figures
// @Description Monthly spend, active and expiring counts, spend per category and upcoming payments.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.OKResponse{data=views.Dashboard}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.dashboard.ServeHTTP"

	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.log.Error("failed to build dashboard",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load dashboard"))
		return
	}
	render.JSON(w, r, response.OKWithData(d))
}
