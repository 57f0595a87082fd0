package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

// ImportResult reports what an import found and stored.
type ImportResult struct {
	Found    int                   `json:"found"`
	Imported int                   `json:"imported"`
	Failed   int                   `json:"failed"`
	DryRun   bool                  `json:"dryRun"`
	Records  []models.Subscription `json:"records,omitempty"`
}

// Import parses data and, unless dryRun is set, creates every candidate in
// file order. File level problems are returned as csvio errors and nothing is
// stored. Individual create failures are counted and logged; records created
// before a failure stay.
func (s *SubscriptionService) Import(ctx context.Context, data []byte, dryRun bool) (ImportResult, error) {
	const op = "services.subscription.Import"

	res, err := csvio.NewImporter(s.maxSize).Import(data, s.clock())
	if err != nil {
		s.metrics.importFiles.WithLabelValues("rejected").Inc()
		return ImportResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if res.Empty() {
		s.metrics.importFiles.WithLabelValues("empty").Inc()
		return ImportResult{DryRun: dryRun}, nil
	}

	out := ImportResult{Found: res.Valid, DryRun: dryRun}
	if dryRun {
		s.metrics.importFiles.WithLabelValues("dry_run").Inc()
		out.Records = res.Records
		return out, nil
	}

	for _, rec := range res.Records {
		if _, err := s.repo.CreateSubscription(ctx, rec); err != nil {
			out.Failed++
			s.log.Error("failed to import record", slog.String("name", rec.Name), sl.Err(err))
			continue
		}
		out.Imported++
	}
	s.metrics.importFiles.WithLabelValues("imported").Inc()
	s.metrics.importRecords.WithLabelValues("imported").Add(float64(out.Imported))
	s.metrics.importRecords.WithLabelValues("failed").Add(float64(out.Failed))
	s.log.Info("imported subscriptions", slog.Int("imported", out.Imported), slog.Int("failed", out.Failed))

	if out.Imported > 0 {
		s.changed(ctx)
	}
	return out, nil
}
