package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/varia/pkg/adapters/redis"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisPublisher_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunPubSubContract(t, redis.NewFromClient(client))
}

func TestRedisPublisher_Channel(t *testing.T) {
	mr, client := newClient(t)
	pub := redis.NewFromClient(client, redis.WithPrefix("app:"), redis.WithChannel("sess-1"))
	assert.Equal(t, "app:sess-1", pub.Channel())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := pub.Subscribe(ctx)
	require.NoError(t, err)

	subs := mr.PubSubChannels("app:*")
	assert.Contains(t, subs, "app:sess-1")

	require.NoError(t, pub.Dispatch(ctx, domain.ActionRequest{Type: domain.ActionCloseOverlay, OverlayID: "modal"}))
	select {
	case got := <-ch:
		assert.Equal(t, domain.ActionCloseOverlay, got.Type)
		assert.Equal(t, "modal", got.OverlayID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestRedisPublisher_SkipsMalformed(t *testing.T) {
	mr, client := newClient(t)
	pub := redis.NewFromClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := pub.Subscribe(ctx)
	require.NoError(t, err)

	mr.Publish(pub.Channel(), "{not json")
	require.NoError(t, pub.Dispatch(ctx, domain.ActionRequest{Type: domain.ActionGoBack}))

	select {
	case got := <-ch:
		assert.Equal(t, domain.ActionGoBack, got.Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestRedisPublisher_NewFailsWithoutServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = redis.New(addr)
	assert.Error(t, err)
}
