package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/lib/smtp"
	"github.com/sibintb/submanager/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	return m.Called().Error(0)
}

var users = []models.User{
	{ID: "1", Email: "admin", Role: models.RoleAdmin},
	{ID: "2", Email: "ops@example.com", Role: models.RoleAdmin},
	{ID: "3", Email: "user@example.com", Role: models.RoleUser},
	{ID: "4", Email: "cfo@example.com", Role: models.RoleAdmin},
}

const body = `{"subscriptionId":"s-1","name":"Netflix","price":15.99,"currency":"USD","nextPayment":"2024-12-25","daysLeft":1}`

func TestSenderService_HandleUpcomingPayment(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMocks func(r *MockRepository, tr *MockTransport)
		wantErr    string
	}{
		{
			name: "mails every admin address",
			body: body,
			setupMocks: func(r *MockRepository, tr *MockTransport) {
				client := new(MockSMTPClient)
				writer := new(MockSMTPWriter)

				r.On("ListUsers", mock.Anything).Return(users, nil).Once()
				tr.On("From").Return("noreply@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "ops@example.com").Return(nil).Once()
				client.On("Rcpt", "cfo@example.com").Return(nil).Once()
				client.On("Data").Return(writer, nil).Once()
				writer.On("Write", mock.MatchedBy(func(p []byte) bool {
					s := string(p)
					return strings.Contains(s, "Subject: Netflix renews tomorrow") &&
						strings.Contains(s, "To: ops@example.com, cfo@example.com") &&
						strings.Contains(s, "charged 15.99 USD on 2024-12-25")
				})).Return(len(body), nil).Once()
				writer.On("Close").Return(nil).Once()
				client.On("Quit").Return(nil).Once()
				client.On("Close").Return(nil).Once()
			},
		},
		{
			name:       "malformed message is dropped",
			body:       "not json",
			setupMocks: func(*MockRepository, *MockTransport) {},
		},
		{
			name: "no admin address",
			body: body,
			setupMocks: func(r *MockRepository, _ *MockTransport) {
				r.On("ListUsers", mock.Anything).Return(users[:1], nil).Once()
			},
		},
		{
			name: "user lookup fails",
			body: body,
			setupMocks: func(r *MockRepository, _ *MockTransport) {
				r.On("ListUsers", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: "db down",
		},
		{
			name: "smtp connection error",
			body: body,
			setupMocks: func(r *MockRepository, tr *MockTransport) {
				r.On("ListUsers", mock.Anything).Return(users, nil).Once()
				tr.On("From").Return("noreply@example.com")
				tr.On("Connect").Return(nil, errors.New("connection refused")).Once()
			},
			wantErr: "connection refused",
		},
		{
			name: "recipient rejected",
			body: body,
			setupMocks: func(r *MockRepository, tr *MockTransport) {
				client := new(MockSMTPClient)
				r.On("ListUsers", mock.Anything).Return(users, nil).Once()
				tr.On("From").Return("noreply@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "ops@example.com").Return(errors.New("550 no such user")).Once()
				client.On("Close").Return(nil).Once()
			},
			wantErr: "550 no such user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			transport := new(MockTransport)
			tt.setupMocks(repo, transport)
			service := NewSenderService(repo, sl.Discard(), transport)

			err := service.HandleUpcomingPayment(context.Background(), []byte(tt.body))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			transport.AssertExpectations(t)
		})
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "Netflix renews today"},
		{1, "Netflix renews tomorrow"},
		{5, "Netflix renews in 5 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Subject(models.UpcomingPayment{Name: "Netflix", DaysLeft: tt.days}))
	}
}
