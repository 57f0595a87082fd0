// Package remove implements the admin endpoint that deletes an account.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sibintb/submanager/internal/http/middlewarectx"
	"github.com/sibintb/submanager/internal/http/response"
	"github.com/sibintb/submanager/internal/lib/sl"
	authservice "github.com/sibintb/submanager/internal/services/auth"
	"github.com/sibintb/submanager/internal/storage"
)

// Handler serves DELETE /users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service deletes accounts on behalf of currentID.
type Service interface {
	RemoveUser(ctx context.Context, currentID, id string) error
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Delete a user
// @Description Deletes another account. Removing the own account or the bootstrap "admin" account is refused.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	currentID, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	err := h.service.RemoveUser(r.Context(), currentID, id)
	switch {
	case errors.Is(err, authservice.ErrRemoveSelf):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("cannot remove yourself"))
		return
	case errors.Is(err, authservice.ErrProtectedUser):
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("the admin account cannot be removed"))
		return
	case errors.Is(err, storage.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to remove user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove user"))
		return
	}

	log.Info("user removed", slog.String("id", id))
	render.JSON(w, r, response.OK())
}
