package middlewarectx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/time/rate"

	"github.com/sibintb/submanager/internal/lib/jwt"
	"github.com/sibintb/submanager/internal/lib/sl"
)

type MockTokenParser struct {
	mock.Mock
}

func (m *MockTokenParser) ParseToken(token string) (*jwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("success"))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		setupMocks     func(*MockTokenParser)
		expectedStatus int
		expectedBody   string
		expectedCtx    map[Key]any
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good",
			setupMocks: func(m *MockTokenParser) {
				m.On("ParseToken", "good").Return(&jwt.CustomClaims{UserID: "u-1", Email: "admin", Role: "admin"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCtx:    map[Key]any{User: "admin", Role: "admin", UserUID: "u-1"},
		},
		{
			name:           "missing header",
			setupMocks:     func(*MockTokenParser) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"missing or invalid authorization header"}`,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic abc",
			setupMocks:     func(*MockTokenParser) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"missing or invalid authorization header"}`,
		},
		{
			name:       "expired token",
			authHeader: "Bearer old",
			setupMocks: func(m *MockTokenParser) {
				m.On("ParseToken", "old").Return(nil, errors.New("token is expired")).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"invalid or expired token"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &MockTokenParser{}
			tt.setupMocks(parser)

			var gotCtx map[Key]any
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCtx = map[Key]any{
					User:    r.Context().Value(User),
					Role:    r.Context().Value(Role),
					UserUID: r.Context().Value(UserUID),
				}
				okHandler(w, r)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			JWTMiddleware(parser, sl.Discard())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectedCtx != nil {
				assert.Equal(t, tt.expectedCtx, gotCtx)
			} else {
				assert.Nil(t, gotCtx)
			}
			parser.AssertExpectations(t)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name   string
		role   any
		status int
	}{
		{"admin passes", "admin", http.StatusOK},
		{"user is rejected", "user", http.StatusForbidden},
		{"no role is rejected", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.role != nil {
				req = req.WithContext(contextWith(req, Role, tt.role))
			}
			w := httptest.NewRecorder()
			AdminOnly(sl.Discard())(http.HandlerFunc(okHandler)).ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestUserUIDFrom(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserUIDFrom(req.Context())
	assert.False(t, ok)

	id, ok := UserUIDFrom(contextWith(req, UserUID, "u-1"))
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(sl.Discard(), NewLimiters(1, 2))(http.HandlerFunc(okHandler))

	call := func(uid string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if uid != "" {
			req = req.WithContext(contextWith(req, UserUID, uid))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	for range 2 {
		assert.Equal(t, http.StatusOK, call("u-1").Code)
	}
	w := call("u-1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"too many requests"}`, w.Body.String())

	for range 2 {
		assert.Equal(t, http.StatusOK, call("u-2").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, call("u-2").Code)

	for range 2 {
		assert.Equal(t, http.StatusOK, call("").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, call("").Code)
}

func TestLimiters_EvictsIdleCallers(t *testing.T) {
	now := time.Date(2024, 12, 24, 9, 0, 0, 0, time.UTC)
	l := NewLimiters(rate.Every(time.Hour), 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("u-1"))
	assert.False(t, l.Allow("u-1"))
	assert.True(t, l.Allow("u-2"))
	assert.Equal(t, 2, l.size())

	now = now.Add(limiterIdle + time.Minute)
	assert.True(t, l.Allow("u-3"))
	assert.Equal(t, 1, l.size())
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/subscriptions/{id}", okHandler)
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	for _, path := range []string{"/subscriptions/1", "/subscriptions/2", "/teapot"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/subscriptions/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/teapot", "418")))
}

func contextWith(r *http.Request, key Key, value any) context.Context {
	return context.WithValue(r.Context(), key, value)
}
