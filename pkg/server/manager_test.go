package server_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/whisker/pkg/server"
	"github.com/m-mizutani/whisker/pkg/usecase/discovery"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func acquire(t *testing.T, manager *server.Manager, id string) *session.Controller {
	t.Helper()
	ctrl, err := manager.Acquire(context.Background(), id)
	gt.NoError(t, err)
	return ctrl
}

func TestManagerReap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	api := &mockCatAPI{breeds: testBreeds()}

	var created int
	manager := server.NewManager(func() *session.Controller {
		created++
		return session.NewController(discovery.New(api))
	}, server.WithSessionTTL(10*time.Minute), server.WithManagerClock(clock.Now))
	defer manager.Close()

	ctx := context.Background()
	a := acquire(t, manager, "a")
	gt.True(t, acquire(t, manager, "a") == a)
	acquire(t, manager, "b")
	gt.Equal(t, created, 2)
	gt.Equal(t, manager.Len(), 2)

	clock.Advance(6 * time.Minute)
	manager.Touch("a")
	clock.Advance(6 * time.Minute)

	gt.Equal(t, manager.Reap(ctx), 1)
	gt.Equal(t, manager.Len(), 1)
	gt.True(t, acquire(t, manager, "a") == a)

	clock.Advance(11 * time.Minute)
	gt.Equal(t, manager.Reap(ctx), 1)
	gt.Equal(t, manager.Len(), 0)

	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expired controller did not stop")
	}
}

func TestManagerRunStopsSessions(t *testing.T) {
	manager := server.NewManager(func() *session.Controller {
		return session.NewController(discovery.New(&mockCatAPI{breeds: testBreeds()}))
	})

	ctrl := acquire(t, manager, "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- manager.Run(ctx) }()

	cancel()
	gt.NoError(t, <-done)
	gt.Equal(t, manager.Len(), 0)

	select {
	case <-ctrl.Done():
	default:
		t.Fatal("controller is still running")
	}
}

func TestManagerAttachedSessionIsNotReaped(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	manager := server.NewManager(func() *session.Controller {
		return session.NewController(discovery.New(&mockCatAPI{breeds: testBreeds()}))
	}, server.WithSessionTTL(10*time.Minute), server.WithManagerClock(clock.Now))
	defer manager.Close()
	ctx := context.Background()

	a := acquire(t, manager, "a")
	release := manager.Attach("a")
	secondRelease := manager.Attach("a")

	clock.Advance(30 * time.Minute)
	gt.Equal(t, manager.Reap(ctx), 0)

	release()
	release()
	clock.Advance(30 * time.Minute)
	gt.Equal(t, manager.Reap(ctx), 0)

	secondRelease()
	clock.Advance(5 * time.Minute)
	gt.Equal(t, manager.Reap(ctx), 0)
	clock.Advance(6 * time.Minute)
	gt.Equal(t, manager.Reap(ctx), 1)

	<-a.Done()

	// unknown sessions are ignored
	manager.Attach("missing")()
}

func TestManagerAcquireAfterClose(t *testing.T) {
	var created int
	manager := server.NewManager(func() *session.Controller {
		created++
		return session.NewController(discovery.New(&mockCatAPI{breeds: testBreeds()}))
	})

	acquire(t, manager, "a")
	manager.Close()

	ctrl, err := manager.Acquire(context.Background(), "b")
	gt.True(t, errors.Is(err, server.ErrManagerClosed))
	gt.Nil(t, ctrl)
	gt.Equal(t, created, 1)
	gt.Equal(t, manager.Len(), 0)
}
