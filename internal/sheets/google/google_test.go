package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/sibintb/submanager/internal/models"
)

type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	written [][]any
	fail    bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method)
	if f.fail {
		http.Error(w, `{"error":{"code":400,"message":"boom"}}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.written = vr.Values
		_, _ = w.Write([]byte(`{"updatedRange":"Subscriptions!A1:G2"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing spreadsheet id")
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: t.TempDir() + "/nope.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestWriteSubscriptions(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	list := []models.Subscription{
		{ID: "1", Name: "Netflix", Price: 15.99, Cycle: "1 Month", Category: "Entertainment", NextPayment: "2024-12-31", Active: true},
	}

	ref, err := c.WriteSubscriptions(context.Background(), list)
	require.NoError(t, err)
	assert.Equal(t, "Subscriptions!A1:G2", ref)

	assert.Equal(t, []string{http.MethodPost, http.MethodPut}, fake.calls)
	require.Len(t, fake.written, 2)
	assert.Equal(t, "name", fake.written[0][0])
	assert.Equal(t, "Netflix", fake.written[1][0])
	assert.Equal(t, 15.99, fake.written[1][1])
	assert.Equal(t, true, fake.written[1][5])
	assert.Equal(t, "USD", fake.written[1][6])
}

func TestWriteSubscriptions_APIError(t *testing.T) {
	fake := &fakeSheets{fail: true}
	c := newTestClient(t, fake)

	_, err := c.WriteSubscriptions(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear Subscriptions")
}
