package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sibintb/submanager/internal/dashboard"
)

func TestQuery(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want dashboard.Query
	}{
		{"defaults", "/subscriptions", dashboard.DefaultQuery()},
		{
			name: "all parameters",
			url:  "/subscriptions?search=net&category=Software&sort=price&dir=desc",
			want: dashboard.Query{Search: "net", Category: "Software", SortKey: "price", SortDirection: dashboard.Desc},
		},
		{
			name: "unknown direction sorts ascending",
			url:  "/subscriptions?sort=name&dir=sideways",
			want: dashboard.Query{Category: dashboard.AllCategories, SortKey: "name", SortDirection: dashboard.Asc},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Query(httptest.NewRequest(http.MethodGet, tt.url, nil)))
		})
	}
}

func TestBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/import?dry_run=true&x=nope", nil)
	assert.True(t, Bool(r, "dry_run"))
	assert.False(t, Bool(r, "x"))
	assert.False(t, Bool(r, "missing"))
}
