// Package scheduler wires the process that announces upcoming payments.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/sibintb/submanager/internal/config"
	"github.com/sibintb/submanager/internal/lib/rabbitmq"
	"github.com/sibintb/submanager/internal/lib/sl"
	schedulerservice "github.com/sibintb/submanager/internal/services/scheduler"
	"github.com/sibintb/submanager/internal/storage"
)

// App is the scheduler process.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	cfg              *config.Config
	db               *storage.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

// New connects the broker and the storage.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationTopology(cfg.RabbitExchange, cfg.RabbitQueue, cfg.RabbitRoutingKey))
	if err != nil {
		closeResources(nil, conn, nil, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		closeResources(ch, conn, nil, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedulerService := schedulerservice.NewSchedulerService(db, ch, cfg.RabbitExchange, cfg.RabbitRoutingKey, nil, logger)

	return &App{
		schedulerService: schedulerService,
		cfg:              cfg,
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, db *storage.Storage, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}

// Run publishes upcoming payments every NotifyInterval until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scheduler started", slog.Duration("interval", a.cfg.NotifyInterval))
	a.schedulerService.Run(ctx, a.cfg.NotifyInterval)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.db, a.logger)
	return nil
}
