package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Notifications(ctx context.Context) ([]dashboard.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dashboard.Notification), args.Error(1)
}

func TestNotificationsHandler(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "flattened record with days left",
			setupMock: func(m *MockService) {
				m.On("Notifications", mock.Anything).Return([]dashboard.Notification{{
					Subscription: models.Subscription{ID: "1", Name: "AWS", Price: 42.5, Cycle: "1 Month",
						Category: "Infrastructure", NextPayment: "2024-12-24", Active: true, Currency: "USD"},
					DaysLeft: 0,
				}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":[{"id":"1","name":"AWS","price":42.5,"cycle":"1 Month",` +
				`"category":"Infrastructure","nextPayment":"2024-12-24","active":true,"currency":"USD","daysLeft":0}]}`,
		},
		{
			name: "failure",
			setupMock: func(m *MockService) {
				m.On("Notifications", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not load notifications"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
