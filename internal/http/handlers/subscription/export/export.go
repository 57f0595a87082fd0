// Package export implements the download of the current table as CSV, XLSX
// or PDF.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/http/request"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/report"
)

// Export formats accepted by the format query parameter.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Handler serves GET /subscriptions/export.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service renders the filtered table.
type Service interface {
	ExportCSV(ctx context.Context, q dashboard.Query) (string, error)
	ExportXLSX(ctx context.Context, q dashboard.Query) ([]byte, error)
	ExportPDF(ctx context.Context, q dashboard.Query) ([]byte, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Export subscriptions
// @Description Downloads the filtered and sorted table. CSV is the import format; XLSX and PDF are reports.
// @Tags Subscriptions
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/pdf
// @Security BearerAuth
// @Param format query string false "File format" Enums(csv, xlsx, pdf) default(csv)
// @Param search query string false "Case-insensitive substring of the name"
// @Param category query string false "Category or All"
// @Param sort query string false "Sort column"
// @Param dir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.export.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatCSV
	}
	q := request.Query(r)

	var (
		body        []byte
		fileName    string
		contentType string
		err         error
	)
	switch format {
	case FormatCSV:
		var s string
		s, err = h.service.ExportCSV(r.Context(), q)
		body, fileName, contentType = []byte(s), csvio.ExportFileName, csvio.ContentType
	case FormatXLSX:
		body, err = h.service.ExportXLSX(r.Context(), q)
		fileName, contentType = report.XLSXFileName, report.XLSXContentType
	case FormatPDF:
		body, err = h.service.ExportPDF(r.Context(), q)
		fileName, contentType = report.PDFFileName, report.PDFContentType
	default:
		log.Warn("unknown export format", slog.String("format", format))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("format must be one of csv, xlsx, pdf"))
		return
	}
	if err != nil {
		log.Error("failed to export subscriptions", slog.String("format", format), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export subscriptions"))
		return
	}

	Attachment(w, fileName, contentType)
	if _, err := w.Write(body); err != nil {
		log.Error("failed to write export", sl.Err(err))
		return
	}
	log.Info("exported subscriptions", slog.String("format", format), slog.Int("bytes", len(body)))
}

// Attachment sets the headers of a file download.
func Attachment(w http.ResponseWriter, fileName, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
}
