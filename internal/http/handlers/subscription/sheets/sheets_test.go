package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/lib/sl"
	subservice "github.com/sibintb/submanager/internal/services/subscription"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) PushToSheet(ctx context.Context, q dashboard.Query) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

func TestSheetsHandler(t *testing.T) {
	tests := []struct {
		name           string
		ref            string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"pushed", "Subscriptions!A1:G3", nil, http.StatusOK, `{"status":"OK","data":{"range":"Subscriptions!A1:G3"}}`},
		{"disabled", "", fmt.Errorf("op: %w", subservice.ErrSheetsDisabled), http.StatusServiceUnavailable,
			`{"status":"Error","error":"spreadsheet sync is not configured"}`},
		{"api failure", "", errors.New("googleapi: 403"), http.StatusBadGateway,
			`{"status":"Error","error":"could not update spreadsheet"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			svc.On("PushToSheet", mock.Anything, dashboard.DefaultQuery()).Return(tt.ref, tt.err).Once()

			w := httptest.NewRecorder()
			New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/subscriptions/sheets", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
