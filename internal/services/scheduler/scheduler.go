// Package services holds the notification scheduler. It periodically looks
// for subscriptions due soon and publishes one message per payment and day.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/lib/dates"
	"github.com/sibintb/submanager/internal/lib/rabbitmq"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

// SubscriptionRepository lists the stored subscriptions.
type SubscriptionRepository interface {
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// SchedulerService publishes upcoming payments.
type SchedulerService struct {
	repo       SubscriptionRepository
	channel    rabbitmq.Channel
	exchange   string
	routingKey string
	clock      dates.Clock
	log        *slog.Logger

	mu   sync.Mutex
	day  string
	sent map[string]struct{}
}

// NewSchedulerService creates a SchedulerService publishing to exchange with
// routingKey. A nil clock means time.Now.
func NewSchedulerService(repo SubscriptionRepository, channel rabbitmq.Channel, exchange, routingKey string, clock dates.Clock, log *slog.Logger) *SchedulerService {
	if clock == nil {
		clock = time.Now
	}
	return &SchedulerService{
		repo:       repo,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		clock:      clock,
		log:        log,
		sent:       make(map[string]struct{}),
	}
}

// Run publishes once right away and then on every tick of interval until ctx
// is cancelled.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context) {
	n, err := s.PublishUpcoming(ctx)
	if err != nil {
		s.log.Error("failed to publish upcoming payments", sl.Err(err))
		return
	}
	s.log.Info("published upcoming payments", slog.Int("count", n))
}

// PublishUpcoming sends one message per notification not yet published today
// and returns how many were published. A failed publish is logged and retried
// on the next run.
func (s *SchedulerService) PublishUpcoming(ctx context.Context) (int, error) {
	const op = "services.scheduler.PublishUpcoming"

	list, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if day := dates.Format(now); day != s.day {
		s.day = day
		clear(s.sent)
	}

	published := 0
	for _, n := range dashboard.Notifications(list, now) {
		key := n.ID + "|" + n.NextPayment
		if _, ok := s.sent[key]; ok {
			continue
		}
		msg := models.UpcomingPayment{
			SubscriptionID: n.ID,
			Name:           n.Name,
			Price:          n.Price,
			Currency:       n.CurrencyOrDefault(),
			NextPayment:    n.NextPayment,
			DaysLeft:       n.DaysLeft,
		}
		if err := rabbitmq.PublishMessage(s.channel, s.exchange, s.routingKey, msg); err != nil {
			s.log.Error("failed to publish message", slog.String("id", n.ID), sl.Err(err))
			continue
		}
		s.sent[key] = struct{}{}
		published++
	}
	return published, nil
}
