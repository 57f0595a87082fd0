package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibintb/submanager/internal/models"
)

func TestStore_WriteSubscriptions(t *testing.T) {
	s := New()
	assert.Empty(t, s.Values())

	list := []models.Subscription{
		{Name: "Netflix", Price: 15.99, Cycle: "1 Month", Category: "Entertainment", NextPayment: "2024-12-31", Active: true},
		{Name: "AWS", Price: 10, Cycle: "1 Year", Category: "Infrastructure", NextPayment: "2025-03-01", Currency: "EUR"},
	}

	ref, err := s.WriteSubscriptions(context.Background(), list)
	require.NoError(t, err)
	assert.Equal(t, "mem:1!A1:G3", ref)

	got := s.Values()
	require.Len(t, got, 3)
	assert.Equal(t, []any{"Netflix", 15.99, "1 Month", "Entertainment", "2024-12-31", true, "USD"}, got[1])
	assert.Equal(t, "EUR", got[2][6])

	ref, err = s.WriteSubscriptions(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "mem:2!A1:G1", ref)
	assert.Len(t, s.Values(), 1)
}

func TestStore_ValuesIsACopy(t *testing.T) {
	s := New()
	_, err := s.WriteSubscriptions(context.Background(), []models.Subscription{{Name: "A"}})
	require.NoError(t, err)

	got := s.Values()
	got[1][0] = "changed"
	assert.Equal(t, "A", s.Values()[1][0])
}
