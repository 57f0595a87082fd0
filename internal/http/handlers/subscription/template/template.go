// Package template implements the download of the CSV import template.
package template

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/export"
	"github.com/sibintb/submanager/internal/lib/sl"
)

// Handler serves GET /subscriptions/template.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service returns the template text.
type Service interface {
	Template() string
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Import template
// @Description Downloads a CSV file with the required header and one example row.
// @Tags Subscriptions
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /subscriptions/template [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.template.ServeHTTP"

	export.Attachment(w, csvio.TemplateFileName, csvio.ContentType)
	if _, err := w.Write([]byte(h.service.Template())); err != nil {
		h.log.Error("failed to write template",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
	}
}
