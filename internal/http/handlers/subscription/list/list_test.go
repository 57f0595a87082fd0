package list

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

func (m *MockService) View(ctx context.Context, q dashboard.Query) ([]models.Subscription, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "query is forwarded",
			url:  "/subscriptions?search=net&sort=price&dir=desc",
			setupMock: func(m *MockService) {
				q := dashboard.Query{Search: "net", Category: dashboard.AllCategories, SortKey: "price", SortDirection: "desc"}
				m.On("View", mock.Anything, q).Return([]models.Subscription{{ID: "1", Name: "Netflix", Currency: "USD"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":[{"id":"1","name":"Netflix","price":0,"cycle":"","category":"",` +
				`"nextPayment":"","active":false,"currency":"USD"}]}`,
		},
		{
			name: "empty list",
			url:  "/subscriptions",
			setupMock: func(m *MockService) {
				m.On("View", mock.Anything, dashboard.DefaultQuery()).Return([]models.Subscription{}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":[]}`,
		},
		{
			name: "service error",
			url:  "/subscriptions",
			setupMock: func(m *MockService) {
				m.On("View", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not list subscriptions"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
