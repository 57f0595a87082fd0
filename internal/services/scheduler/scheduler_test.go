package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sibintb/submanager/internal/lib/dates"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	failAfter int
}

func (c *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAfter > 0 && len(c.published) >= c.failAfter {
		return errors.New("channel closed")
	}
	c.published = append(c.published, msg)
	c.keys = append(c.keys, exchange+"/"+key)
	return nil
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

var today = time.Date(2024, 12, 24, 9, 0, 0, 0, time.UTC)

var fixture = []models.Subscription{
	{ID: "1", Name: "Netflix", Price: 15.99, Cycle: "1 Month", NextPayment: "2024-12-31", Active: true},
	{ID: "2", Name: "AWS", Price: 42.5, Cycle: "1 Month", NextPayment: "2024-12-24", Active: true, Currency: "EUR"},
	{ID: "3", Name: "Paused", Price: 5, Cycle: "1 Month", NextPayment: "2024-12-25", Active: false},
	{ID: "4", Name: "Later", Price: 5, Cycle: "1 Month", NextPayment: "2025-01-01", Active: true},
}

func TestPublishUpcoming(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ListSubscriptions", mock.Anything).Return(fixture, nil).Once()
	ch := &fakeChannel{}

	svc := NewSchedulerService(repo, ch, "notifications", "upcoming", dates.Fixed(today), sl.Discard())
	n, err := svc.PublishUpcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"notifications/upcoming", "notifications/upcoming"}, ch.keys)

	var first models.UpcomingPayment
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &first))
	assert.Equal(t, models.UpcomingPayment{
		SubscriptionID: "2", Name: "AWS", Price: 42.5, Currency: "EUR", NextPayment: "2024-12-24", DaysLeft: 0,
	}, first)

	var second models.UpcomingPayment
	require.NoError(t, json.Unmarshal(ch.published[1].Body, &second))
	assert.Equal(t, "USD", second.Currency)
	assert.Equal(t, 7, second.DaysLeft)
	assert.Equal(t, amqp.Persistent, ch.published[1].DeliveryMode)
	repo.AssertExpectations(t)
}

func TestPublishUpcoming_Failures(t *testing.T) {
	t.Run("repository error", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("ListSubscriptions", mock.Anything).Return(nil, errors.New("db down")).Once()

		svc := NewSchedulerService(repo, &fakeChannel{}, "notifications", "upcoming", dates.Fixed(today), sl.Discard())
		_, err := svc.PublishUpcoming(context.Background())
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("publish error keeps going", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("ListSubscriptions", mock.Anything).Return(fixture, nil).Once()
		ch := &fakeChannel{failAfter: 1}

		svc := NewSchedulerService(repo, ch, "notifications", "upcoming", dates.Fixed(today), sl.Discard())
		n, err := svc.PublishUpcoming(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestPublishUpcoming_OncePerDay(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ListSubscriptions", mock.Anything).Return(fixture, nil)
	ch := &fakeChannel{}

	now := today
	svc := NewSchedulerService(repo, ch, "notifications", "upcoming", func() time.Time { return now }, sl.Discard())

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{name: "first run", at: today, want: 2},
		{name: "same day", at: today.Add(3 * time.Hour), want: 0},
		{name: "late the same day", at: time.Date(2024, 12, 24, 23, 59, 0, 0, time.UTC), want: 0},
		{name: "next day", at: today.Add(24 * time.Hour), want: 2},
	}
	for _, tt := range tests {
		now = tt.at
		n, err := svc.PublishUpcoming(context.Background())
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, n, tt.name)
	}
	assert.Equal(t, 4, ch.count())
}

func TestPublishUpcoming_RetriesFailedPublish(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ListSubscriptions", mock.Anything).Return(fixture, nil)
	ch := &fakeChannel{failAfter: 1}

	svc := NewSchedulerService(repo, ch, "notifications", "upcoming", dates.Fixed(today), sl.Discard())
	n, err := svc.PublishUpcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ch.mu.Lock()
	ch.failAfter = 0
	ch.mu.Unlock()

	n, err = svc.PublishUpcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, ch.count())
}

func TestRun_StopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	repo := &MockRepository{}
	repo.On("ListSubscriptions", mock.Anything).
		Run(func(mock.Arguments) { runs.Add(1) }).
		Return(fixture, nil)
	ch := &fakeChannel{}
	svc := NewSchedulerService(repo, ch, "notifications", "upcoming", dates.Fixed(today), sl.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 2, ch.count())
}
