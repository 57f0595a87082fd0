package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sibintb/submanager/internal/lib/sl"
)

func amqpURI(ctx context.Context, t *testing.T) string {
	t.Helper()
	if url := os.Getenv("TEST_RABBITMQ_URL"); url != "" {
		return url
	}

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": "guest",
			"RABBITMQ_DEFAULT_PASS": "guest",
		},
		WaitingFor: wait.ForListeningPort("5672/tcp").WithStartupTimeout(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestIntegration_PublishAndConsume(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rabbitmq integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	conn, err := Connect(ctx, amqpURI(ctx, t), 5, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	top := NotificationTopology("test-notifications", "test.upcoming", "upcoming")
	ch, err := SetupChannel(conn, top)
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, PublishMessage(ch, top.Exchange, "upcoming", map[string]string{"name": "Netflix"}))

	got := make(chan map[string]string, 1)
	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = ConsumeMessages(consumeCtx, ch, "test.upcoming", sl.Discard(), func(_ context.Context, body []byte) error {
			var m map[string]string
			if err := json.Unmarshal(body, &m); err != nil {
				return err
			}
			got <- m
			return nil
		})
	}()

	select {
	case m := <-got:
		assert.Equal(t, "Netflix", m["name"])
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}
