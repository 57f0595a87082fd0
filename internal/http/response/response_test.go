package response

import (
	"errors"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibintb/submanager/internal/models"
)

func TestEnvelopes(t *testing.T) {
	assert.Equal(t, OKResponse{Status: StatusOK}, OK())
	assert.Equal(t, OKResponse{Status: StatusOK, Data: 3}, OKWithData(3))
	assert.Equal(t, ErrorResponse{Status: StatusError, Error: "boom"}, Error("boom"))
}

func TestValidationError(t *testing.T) {
	v := models.NewValidator()

	tests := []struct {
		name string
		req  models.DummySubscription
		want string
	}{
		{
			name: "missing name",
			req:  models.DummySubscription{Cycle: "1 Month", Category: "Software", NextPayment: "2025-01-01"},
			want: "field Name is a required field",
		},
		{
			name: "unknown cycle and bad date",
			req:  models.DummySubscription{Name: "X", Cycle: "Weekly", Category: "Software", NextPayment: "01/01/2025"},
			want: "field Cycle must be a known billing cycle, field NextPayment must be a date in format YYYY-MM-DD",
		},
		{
			name: "negative price and bad currency",
			req: models.DummySubscription{Name: "X", Price: -1, Cycle: "1 Month", Category: "Software",
				NextPayment: "2025-01-01", Currency: "EURO"},
			want: "field Price must be at least 0, field Currency must be exactly 3 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			got := ValidationError(verrs)
			assert.Equal(t, StatusError, got.Status)
			assert.Equal(t, tt.want, got.Error)
		})
	}
}
