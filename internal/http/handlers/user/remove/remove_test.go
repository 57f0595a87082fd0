package remove

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sibintb/submanager/internal/http/middlewarectx"
	"github.com/sibintb/submanager/internal/lib/sl"
	authservice "github.com/sibintb/submanager/internal/services/auth"
	"github.com/sibintb/submanager/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RemoveUser(ctx context.Context, currentID, id string) error {
	return m.Called(ctx, currentID, id).Error(0)
}

func TestRemoveUserHandler(t *testing.T) {
	tests := []struct {
		name           string
		currentID      string
		id             string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"removed", "u-1", "u-2", nil, http.StatusOK, `{"status":"OK"}`},
		{"self", "u-1", "u-1", fmt.Errorf("op: %w", authservice.ErrRemoveSelf), http.StatusBadRequest,
			`{"status":"Error","error":"cannot remove yourself"}`},
		{"bootstrap admin", "u-1", "u-0", fmt.Errorf("op: %w", authservice.ErrProtectedUser), http.StatusForbidden,
			`{"status":"Error","error":"the admin account cannot be removed"}`},
		{"missing", "u-1", "u-9", fmt.Errorf("op: %w", storage.ErrNotFound), http.StatusNotFound,
			`{"status":"Error","error":"user not found"}`},
		{"failure", "u-1", "u-2", errors.New("db down"), http.StatusInternalServerError,
			`{"status":"Error","error":"could not remove user"}`},
		{"no caller", "", "u-2", nil, http.StatusUnauthorized, `{"status":"Error","error":"unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			if tt.currentID != "" {
				svc.On("RemoveUser", mock.Anything, tt.currentID, tt.id).Return(tt.err).Once()
			}

			r := chi.NewRouter()
			r.Delete("/users/{id}", New(sl.Discard(), svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodDelete, "/users/"+tt.id, nil)
			if tt.currentID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.currentID))
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
