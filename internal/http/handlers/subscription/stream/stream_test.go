package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
)

type fakeService struct {
	ch chan []models.Subscription
}

func (f *fakeService) Subscribe(context.Context) <-chan []models.Subscription {
	return f.ch
}

func TestStreamHandler(t *testing.T) {
	svc := &fakeService{ch: make(chan []models.Subscription, 2)}
	svc.ch <- []models.Subscription{}
	svc.ch <- []models.Subscription{{ID: "1", Name: "Netflix", Currency: "USD"}}

	srv := httptest.NewServer(New(sl.Discard(), svc))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var data []string
	for len(data) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data: ")))
		}
	}

	assert.Equal(t, "[]", data[0])
	assert.JSONEq(t, `[{"id":"1","name":"Netflix","price":0,"cycle":"","category":"","nextPayment":"","active":false,"currency":"USD"}]`, data[1])
}

func TestStreamHandler_ClosedChannelEndsResponse(t *testing.T) {
	ch := make(chan []models.Subscription)
	close(ch)

	w := httptest.NewRecorder()
	New(sl.Discard(), &fakeService{ch: ch}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/subscriptions/stream", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
