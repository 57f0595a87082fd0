// Package memory keeps the last spreadsheet write in process. It backs the
// sync endpoint when no Google spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sibintb/submanager/internal/models"
	ports "github.com/sibintb/submanager/internal/sheets"
)

var _ ports.SubscriptionWriter = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	values [][]any
	writes int
}

func New() *Store {
	return &Store{}
}

// WriteSubscriptions replaces the stored rows and returns a synthetic range.
func (s *Store) WriteSubscriptions(_ context.Context, list []models.Subscription) (string, error) {
	values := ports.Values(list)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.writes++
	return fmt.Sprintf("mem:%d!A1:G%d", s.writes, len(values)), nil
}

// Values returns a copy of the rows of the last write, header included.
func (s *Store) Values() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.values))
	for i, row := range s.values {
		out[i] = append([]any(nil), row...)
	}
	return out
}
