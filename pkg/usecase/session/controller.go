package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

var (
	// ErrBusy is returned by Discover while a selection is in flight
	ErrBusy = goerr.New("a cat is already being fetched")

	// ErrStopped is returned when the controller is not running any more
	ErrStopped = goerr.New("session controller stopped")
)

// Discovery is the catalog loader and selection engine used by a session.
// *discovery.UseCase implements it.
type Discovery interface {
	LoadCatalog(ctx context.Context) ([]*model.Breed, error)
	SelectNext(ctx context.Context, catalog []*model.Breed, bans *model.BanList) (*model.DisplayRecord, error)
}

type commandKind int

const (
	cmdDiscover commandKind = iota
	cmdBan
	cmdUnban
	cmdDismiss
)

type command struct {
	kind  commandKind
	token string
	reply chan error
}

// Controller owns one session. Run is the only writer of the state; every
// other method talks to it through channels or reads a snapshot.
type Controller struct {
	discovery Discovery

	cmds    chan command
	results chan Event
	done    chan struct{}

	mu      sync.RWMutex
	state   State
	subs    map[int]chan State
	nextSub int
	stopped bool

	wg sync.WaitGroup
}

// NewController creates a controller. Nothing happens until Run is called.
func NewController(d Discovery) *Controller {
	return &Controller{
		discovery: d,
		cmds:      make(chan command),
		results:   make(chan Event),
		done:      make(chan struct{}),
		state:     NewState(),
		subs:      make(map[int]chan State),
	}
}

// Run loads the catalog and serves commands until ctx is canceled. It waits
// for in-flight requests to return before it exits.
func (c *Controller) Run(ctx context.Context) error {
	defer c.shutdown()

	c.spawn(ctx, func(ctx context.Context) Event {
		breeds, err := c.discovery.LoadCatalog(ctx)
		if err != nil {
			return CatalogFailed{Err: err}
		}
		return CatalogLoaded{Breeds: breeds}
	})

	for {
		select {
		case <-ctx.Done():
			c.wg.Wait()
			return nil

		case cmd := <-c.cmds:
			cmd.reply <- c.handle(ctx, cmd)

		case ev := <-c.results:
			c.onResult(ctx, ev)
		}
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	close(c.done)
}

// spawn runs fn outside of the controller goroutine and posts its event back
func (c *Controller) spawn(ctx context.Context, fn func(ctx context.Context) Event) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ev := fn(ctx)
		select {
		case c.results <- ev:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) onResult(ctx context.Context, ev Event) {
	logger := logging.From(ctx)

	switch ev := ev.(type) {
	case CatalogFailed:
		logger.Error("Failed to load cat breeds", "error", ev.Err)
		c.apply(ev)

	case CatalogLoaded:
		if len(ev.Breeds) == 0 {
			c.apply(ev)
			return
		}
		// Publish the loaded catalog and the first selection as one change
		c.apply(ev, DiscoverStarted{})
		c.startSelection(ctx)

	case SelectionFailed:
		if errors.Is(ev.Err, model.ErrExhausted) {
			logger.Warn("No eligible breed", "error", ev.Err)
		} else {
			logger.Error("Cat API Error", "error", ev.Err)
		}
		c.apply(ev)

	default:
		c.apply(ev)
	}
}

func (c *Controller) handle(ctx context.Context, cmd command) error {
	switch cmd.kind {
	case cmdDiscover:
		st := c.Snapshot()
		if !st.CatalogReady {
			return goerr.Wrap(model.ErrCatalogNotReady, "discover rejected",
				goerr.V("catalog_error", st.CatalogErr))
		}
		if st.Loading {
			return ErrBusy
		}
		c.apply(DiscoverStarted{})
		c.startSelection(ctx)

	case cmdBan:
		c.apply(Banned{Token: cmd.token})

	case cmdUnban:
		c.apply(Unbanned{Token: cmd.token})

	case cmdDismiss:
		c.apply(ErrorDismissed{})
	}

	return nil
}

func (c *Controller) startSelection(ctx context.Context) {
	st := c.Snapshot()
	catalog, bans := st.Catalog, st.Bans

	c.spawn(ctx, func(ctx context.Context) Event {
		record, err := c.discovery.SelectNext(ctx, catalog, bans)
		if err != nil {
			return SelectionFailed{Err: err}
		}
		return SelectionSucceeded{Record: record}
	})
}

// apply reduces events into the state and notifies subscribers once
func (c *Controller) apply(events ...Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ev := range events {
		c.state = Reduce(c.state, ev)
	}

	for _, ch := range c.subs {
		push(ch, c.state)
	}
}

// push replaces any pending snapshot in ch with st
func push(ch chan State, st State) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

func (c *Controller) send(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)

	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Discover starts a new selection with the current ban list. It returns as
// soon as the selection has started; use Subscribe or WaitIdle for the result.
func (c *Controller) Discover(ctx context.Context) error {
	return c.send(ctx, command{kind: cmdDiscover})
}

// Ban adds token to the ban list. The current record is left as is.
func (c *Controller) Ban(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return goerr.Wrap(model.ErrEmptyToken, "ban rejected")
	}
	return c.send(ctx, command{kind: cmdBan, token: token})
}

// Unban removes token from the ban list
func (c *Controller) Unban(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return goerr.Wrap(model.ErrEmptyToken, "unban rejected")
	}
	return c.send(ctx, command{kind: cmdUnban, token: token})
}

// Dismiss clears the error of the last failed selection
func (c *Controller) Dismiss(ctx context.Context) error {
	return c.send(ctx, command{kind: cmdDismiss})
}

// Snapshot returns the current state
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe returns a channel that receives the current state and every later
// change. Slow readers only see the latest state. The channel is closed by the
// returned cancel function or when Run exits.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, 1)
	if c.stopped {
		ch <- c.state
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[id]; ok {
				close(ch)
				delete(c.subs, id)
			}
		})
	}
}

// WaitIdle blocks until the catalog load has finished and no selection is in
// flight, and returns that state.
func (c *Controller) WaitIdle(ctx context.Context) (State, error) {
	ch, cancel := c.Subscribe()
	defer cancel()

	last := c.Snapshot()
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return last, ErrStopped
			}
			last = st
			if !st.Loading && !st.CatalogPending() {
				return st, nil
			}
		case <-ctx.Done():
			return last, ctx.Err()
		}
	}
}

// Done is closed when Run has returned
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
