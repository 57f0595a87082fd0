// Package importcsv implements the CSV upload. The file is either the "file"
// part of a multipart form or the raw request body.
package importcsv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/http/request"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	subservice "github.com/sibintb/submanager/internal/services/subscription"
)

// FormField is the multipart field carrying the file.
const FormField = "file"

// MsgNoValidData is returned when the file has a header but no records.
const MsgNoValidData = "No valid data found."

// Handler serves POST /subscriptions/import.
type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

// Service imports CSV files.
type Service interface {
	Import(ctx context.Context, data []byte, dryRun bool) (subservice.ImportResult, error)
}

// Result is the data of a processed upload.
type Result struct {
	subservice.ImportResult
	Message string `json:"message"`
}

// New creates a Handler accepting files up to maxSize bytes.
func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	if maxSize <= 0 {
		maxSize = csvio.DefaultMaxSize
	}
	return &Handler{
		log:     log,
		service: service,
		maxSize: maxSize,
	}
}

// ServeHTTP godoc
// @Summary Import subscriptions from CSV
// @Description Validates the header and creates one subscription per non-blank row. With dry_run=true nothing is stored and the parsed records are returned for confirmation.
// @Tags Subscriptions
// @Accept multipart/form-data,text/csv
// @Produce json
// @Security BearerAuth
// @Param file formData file false "CSV file"
// @Param dry_run query bool false "Parse only"
// @Success 200 {object} response.OKResponse{data=Result}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions/import [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.importcsv.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, err := h.readFile(r)
	if err != nil {
		log.Warn("failed to read upload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read file"))
		return
	}

	dryRun := request.Bool(r, "dry_run")
	res, err := h.service.Import(r.Context(), data, dryRun)
	if err != nil {
		status, msg := h.describe(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to import subscriptions", sl.Err(err))
		} else {
			log.Warn("rejected import file", sl.Err(err))
		}
		w.WriteHeader(status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	out := Result{ImportResult: res}
	switch {
	case res.Found == 0:
		out.Message = MsgNoValidData
	case dryRun:
		out.Message = fmt.Sprintf("Found %d valid subscriptions. Import now?", res.Found)
	case res.Failed > 0:
		out.Message = fmt.Sprintf("Imported %d of %d subscriptions.", res.Imported, res.Found)
	default:
		out.Message = fmt.Sprintf("Imported %d subscriptions.", res.Imported)
	}

	log.Info("processed import", slog.Int("found", res.Found), slog.Int("imported", res.Imported), slog.Bool("dry_run", dryRun))
	render.JSON(w, r, response.OKWithData(out))
}

// readFile returns at most maxSize+1 bytes so that oversized files are still
// recognised as such.
func (h *Handler) readFile(r *http.Request) ([]byte, error) {
	limit := h.maxSize + 1

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return io.ReadAll(io.LimitReader(r.Body, limit))
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing %q form field", FormField)
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != FormField {
			continue
		}
		defer part.Close()
		return io.ReadAll(io.LimitReader(part, limit))
	}
}

func (h *Handler) describe(err error) (int, string) {
	msg := csvio.Describe(err, h.maxSize)
	switch {
	case msg == "":
		return http.StatusInternalServerError, "could not import subscriptions"
	case errors.Is(err, csvio.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, msg
	default:
		return http.StatusUnprocessableEntity, msg
	}
}
