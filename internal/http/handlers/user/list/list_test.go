package list

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func TestListUsersHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &MockService{}
		svc.On("ListUsers", mock.Anything).Return([]models.User{
			{ID: "u-1", Name: "Administrator", Email: "admin", PasswordHash: "hash", Role: "admin"},
		}, nil).Once()

		w := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK","data":[{"id":"u-1","name":"Administrator","email":"admin","role":"admin"}]}`, w.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		svc := &MockService{}
		svc.On("ListUsers", mock.Anything).Return(nil, errors.New("db down")).Once()

		w := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
