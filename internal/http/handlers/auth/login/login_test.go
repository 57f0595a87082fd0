package login

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
	authservice "github.com/sibintb/submanager/internal/services/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, identity, password string) (string, models.User, error) {
	args := m.Called(ctx, identity, password)
	return args.String(0), args.Get(1).(models.User), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"identity":"admin","password":"admin"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "admin", "admin").
					Return("tok", models.User{ID: "u-1", Name: "Administrator", Email: "admin", Role: "admin"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"token":"tok","user":{"id":"u-1","name":"Administrator","email":"admin","role":"admin"}}}`,
		},
		{
			name:           "broken json",
			body:           `{"identity":`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "missing password",
			body:           `{"identity":"admin"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Password is a required field"}`,
		},
		{
			name: "wrong password",
			body: `{"identity":"admin","password":"x"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "admin", "x").
					Return("", models.User{}, authservice.ErrInvalidCredentials).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"invalid credentials"}`,
		},
		{
			name: "backend failure",
			body: `{"identity":"admin","password":"x"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "admin", "x").
					Return("", models.User{}, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			New(sl.Discard(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
