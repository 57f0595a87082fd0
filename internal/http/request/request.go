// Package request reads the common query parameters of the subscription
// endpoints.
package request

import (
	"net/http"
	"strconv"

	"github.com/sibintb/submanager/internal/dashboard"
)

// Query reads search, category, sort and dir. Missing parameters keep the
// values of dashboard.DefaultQuery.
func Query(r *http.Request) dashboard.Query {
	q := dashboard.DefaultQuery()
	v := r.URL.Query()

	q.Search = v.Get("search")
	if c := v.Get("category"); c != "" {
		q.Category = c
	}
	if s := v.Get("sort"); s != "" {
		q.SortKey = s
	}
	if v.Get("dir") == dashboard.Desc {
		q.SortDirection = dashboard.Desc
	}
	return q
}

// Bool reads a boolean query parameter; anything unparsable is false.
func Bool(r *http.Request, name string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && b
}
