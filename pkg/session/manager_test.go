package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/varia"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/aretw0/varia/pkg/ports"
	"github.com/aretw0/varia/pkg/scheduler"
	"github.com/aretw0/varia/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetCreatesOnce(t *testing.T) {
	var created atomic.Int32
	base := session.NewFactory(nil)
	factory := func(ctx context.Context, id string) (*session.Session, error) {
		created.Add(1)
		time.Sleep(10 * time.Millisecond) // widen the race window
		return base(ctx, id)
	}
	mgr := session.NewManager(factory)
	ctx := context.Background()
	defer mgr.CloseAll(ctx)

	var wg sync.WaitGroup
	results := make([]*session.Session, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := mgr.Get(ctx, "atomic-init")
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	mgr := session.NewManager(session.NewFactory(nil, varia.WithScheduler(scheduler.NewManual())))
	ctx := context.Background()

	a, err := mgr.Get(ctx, "a")
	require.NoError(t, err)
	b, err := mgr.Get(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, a.Engine.Register("box", "", "blue"))
	require.NoError(t, b.Engine.Register("box", "", "green"))

	assert.Equal(t, "blue", a.Engine.Variant("box"))
	assert.Equal(t, "green", b.Engine.Variant("box"))
	assert.Equal(t, []string{"a", "b"}, mgr.List())
}

func TestManager_ActionsStream(t *testing.T) {
	var extra []domain.ActionRequest
	mgr := session.NewManager(session.NewFactory(
		func(string) ports.ActionDispatcher {
			return ports.DispatcherFunc(func(_ context.Context, req domain.ActionRequest) error {
				extra = append(extra, req)
				return nil
			})
		},
		varia.WithScheduler(scheduler.NewManual()),
	))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := mgr.Get(ctx, "sess-1")
	require.NoError(t, err)
	stream, err := s.Actions.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Engine.Register("menu", "", "closed"))
	require.NoError(t, s.Engine.RegisterRules("menu", dsl.New().OpenOverlay(dsl.KeyClick, "main").Build()))
	s.Engine.Emit(ctx, "menu", domain.TriggerClick, domain.EventData{})

	select {
	case req := <-stream:
		assert.Equal(t, "main", req.OverlayID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for action")
	}
	require.Len(t, extra, 1)
}

func TestManager_Close(t *testing.T) {
	mgr := session.NewManager(session.NewFactory(nil))
	ctx := context.Background()

	_, err := mgr.Get(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, mgr.Close(ctx, "s"))

	_, ok := mgr.Lookup("s")
	assert.False(t, ok)
	assert.ErrorIs(t, mgr.Close(ctx, "s"), domain.ErrSessionNotFound)
}

func TestManager_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	mgr := session.NewManager(func(context.Context, string) (*session.Session, error) { return nil, boom })

	_, err := mgr.Get(context.Background(), "s")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mgr.List())

	_, err = mgr.Get(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrEmptySessionID)
}
