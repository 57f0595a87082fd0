package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/models"
	"github.com/sibintb/submanager/internal/report"
	"github.com/sibintb/submanager/internal/storage"
)

// ErrSheetsDisabled is returned by PushToSheet without a configured writer.
var ErrSheetsDisabled = errors.New("spreadsheet sync is not configured")

// Read returns the record with id from the snapshot.
func (s *SubscriptionService) Read(ctx context.Context, id string) (models.Subscription, error) {
	const op = "services.subscription.Read"

	list, err := s.Snapshot(ctx)
	if err != nil {
		return models.Subscription{}, err
	}
	for _, sub := range list {
		if sub.ID == id {
			return sub, nil
		}
	}
	return models.Subscription{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

// View returns the filtered and sorted records for q.
func (s *SubscriptionService) View(ctx context.Context, q dashboard.Query) ([]models.Subscription, error) {
	list, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.FilterAndSort(list, q), nil
}

// Dashboard returns stats, the category breakdown and notifications.
func (s *SubscriptionService) Dashboard(ctx context.Context) (dashboard.Dashboard, error) {
	list, err := s.Snapshot(ctx)
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	return dashboard.Build(list, s.clock()), nil
}

// Notifications returns the active records due within the expiring window.
func (s *SubscriptionService) Notifications(ctx context.Context) ([]dashboard.Notification, error) {
	list, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.Notifications(list, s.clock()), nil
}

// ExportCSV renders the view for q in the interchange format.
func (s *SubscriptionService) ExportCSV(ctx context.Context, q dashboard.Query) (string, error) {
	list, err := s.View(ctx, q)
	if err != nil {
		return "", err
	}
	return csvio.Export(list), nil
}

// ExportXLSX renders the view for q as a workbook.
func (s *SubscriptionService) ExportXLSX(ctx context.Context, q dashboard.Query) ([]byte, error) {
	const op = "services.subscription.ExportXLSX"
	list, err := s.View(ctx, q)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// ExportPDF renders the view for q as a PDF report.
func (s *SubscriptionService) ExportPDF(ctx context.Context, q dashboard.Query) ([]byte, error) {
	const op = "services.subscription.ExportPDF"
	list, err := s.View(ctx, q)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// Template returns the import template.
func (s *SubscriptionService) Template() string {
	return csvio.Template()
}

// PushToSheet replaces the configured spreadsheet with the view for q.
func (s *SubscriptionService) PushToSheet(ctx context.Context, q dashboard.Query) (string, error) {
	const op = "services.subscription.PushToSheet"
	if s.sheet == nil {
		return "", fmt.Errorf("%s: %w", op, ErrSheetsDisabled)
	}
	list, err := s.View(ctx, q)
	if err != nil {
		return "", err
	}
	ref, err := s.sheet.WriteSubscriptions(ctx, list)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("pushed subscriptions to sheet", "range", ref, "count", len(list))
	return ref, nil
}
