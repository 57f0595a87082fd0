// Package sheets implements the push of the current table to the configured
// spreadsheet.
package sheets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/http/request"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	subservice "github.com/sibintb/submanager/internal/services/subscription"
)

// Handler serves POST /subscriptions/sheets.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service writes the table to a spreadsheet.
type Service interface {
	PushToSheet(ctx context.Context, q dashboard.Query) (string, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Push subscriptions to a spreadsheet
// @Description Replaces the configured sheet with the filtered and sorted table.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring of the name"
// @Param category query string false "Category or All"
// @Param sort query string false "Sort column"
// @Param dir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} response.OKResponse{data=map[string]string}
// @Failure 401 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /subscriptions/sheets [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.sheets.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ref, err := h.service.PushToSheet(r.Context(), request.Query(r))
	if errors.Is(err, subservice.ErrSheetsDisabled) {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("spreadsheet sync is not configured"))
		return
	}
	if err != nil {
		log.Error("failed to push subscriptions to sheet", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not update spreadsheet"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]string{"range": ref}))
}
