// Package sender wires the process that mails upcoming payment notices.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/sibintb/submanager/internal/config"
	"github.com/sibintb/submanager/internal/lib/rabbitmq"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/lib/smtp"
	senderservice "github.com/sibintb/submanager/internal/services/sender"
	"github.com/sibintb/submanager/internal/storage"
)

// App is the sender process.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	db            *storage.Storage
	queue         string
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New connects the storage and the broker and prepares the SMTP transport.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	db, err := storage.New(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationTopology(cfg.RabbitExchange, cfg.RabbitQueue, cfg.RabbitRoutingKey))
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(db, logger, transport)

	return &App{
		conn:          conn,
		ch:            ch,
		db:            db,
		queue:         cfg.RabbitQueue,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run consumes the notification queue until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("sender started", slog.String("queue", a.queue))
	err := rabbitmq.ConsumeMessages(ctx, a.ch, a.queue, a.logger, a.senderService.HandleUpcomingPayment)
	if err != nil {
		a.logger.Error("failed to consume queue", slog.String("queue", a.queue), sl.Err(err))
	}

	a.logger.Info("sender service shutting down gracefully")
	if cerr := a.ch.Close(); cerr != nil {
		a.logger.Error("failed to close channel", sl.Err(cerr))
	}
	if cerr := a.conn.Close(); cerr != nil {
		a.logger.Error("failed to close connection", sl.Err(cerr))
	}
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close storage", sl.Err(cerr))
	}
	return err
}
