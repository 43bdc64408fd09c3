package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPubSubContract runs a suite of tests to verify that an ActionPubSub implementation
// adheres to the defined interface contract.
func RunPubSubContract(t *testing.T, ps ActionPubSub) {
	t.Run("Dispatch reaches subscriber", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ch, err := ps.Subscribe(ctx)
		require.NoError(t, err, "Subscribe should not return error")

		req := domain.ActionRequest{
			Type:      domain.ActionOpenOverlay,
			SourceID:  "menu-button",
			TargetID:  "menu-button",
			Variant:   "open",
			OverlayID: "main-menu",
		}
		require.NoError(t, ps.Dispatch(ctx, req), "Dispatch should not return error")

		select {
		case got := <-ch:
			assert.Equal(t, req, got)
		case <-ctx.Done():
			t.Fatal("timed out waiting for dispatched request")
		}
	})

	t.Run("Order preserved", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ch, err := ps.Subscribe(ctx)
		require.NoError(t, err)

		urls := []string{"/a", "/b", "/c"}
		for _, u := range urls {
			require.NoError(t, ps.Dispatch(ctx, domain.ActionRequest{Type: domain.ActionOpenLink, URL: u}))
		}
		for _, want := range urls {
			select {
			case got := <-ch:
				assert.Equal(t, want, got.URL)
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %s", want)
			}
		}
	})

	t.Run("Cancel closes stream", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := ps.Subscribe(ctx)
		require.NoError(t, err)

		cancel()

		deadline := time.After(5 * time.Second)
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("stream not closed after context cancel")
			}
		}
	})
}
