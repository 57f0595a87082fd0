// Package list implements the endpoint returning the filtered and sorted
// subscription table.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/http/request"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

// Handler serves GET /subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service returns the table view.
type Service interface {
	View(ctx context.Context, q dashboard.Query) ([]models.Subscription, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List subscriptions
// @Description Returns the subscriptions matching the search term and category, ordered by the sort column.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring of the name"
// @Param category query string false "Category or All"
// @Param sort query string false "Sort column" Enums(name, price, cycle, category, nextPayment, active)
// @Param dir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} response.OKResponse{data=[]models.Subscription}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := request.Query(r)
	list, err := h.service.View(r.Context(), q)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	log.Debug("listed subscriptions", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(list))
}
