package offline

import (
	"context"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Controller holds the manager currently serving requests, and swaps in newer
// versions once they are installed and active.
type Controller struct {
	mu      sync.RWMutex
	current *Manager
	// installed, but its activation failed
	pending *Manager
}

// NewController starts serving through the given manager. Until the manager
// is active its requests go straight to the network.
func NewController(initial *Manager) *Controller {
	return &Controller{current: initial}
}

func (c *Controller) Current() *Manager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Deploy installs and activates next, then hands it the traffic. When either
// step fails the current manager keeps serving. A failed activation leaves
// next pending, ActivatePending retries it.
func (c *Controller) Deploy(ctx context.Context, next *Manager) error {
	if err := next.Install(ctx); err != nil {
		return err
	}
	return c.activate(ctx, next)
}

// ActivatePending retries the activation of a deployed version that could
// not be activated. It does nothing when no version is pending.
func (c *Controller) ActivatePending(ctx context.Context) error {
	c.mu.RLock()
	pending := c.pending
	c.mu.RUnlock()

	if pending == nil {
		return nil
	}
	log.Debugf("offline cache [%s]: retrying activation", pending.Version())
	return c.activate(ctx, pending)
}

func (c *Controller) activate(ctx context.Context, next *Manager) error {
	if err := next.Activate(ctx); err != nil {
		log.Errorf("offline cache [%s]: activate: %s", next.Version(), err)
		c.mu.Lock()
		if c.pending != nil && c.pending != next {
			c.pending.retire()
		}
		c.pending = next
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	prev := c.current
	c.current = next
	if c.pending == next {
		c.pending = nil
	}
	c.mu.Unlock()

	if prev != nil && prev != next {
		prev.retire()
	}
	return nil
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.Current().ServeHTTP(w, r)
}

// Status describes the version currently serving requests, and the version
// waiting for its activation, if any.
type Status struct {
	Version string `json:"version"`
	State   string `json:"state"`
	Pending string `json:"pending,omitempty"`
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	current, pending := c.current, c.pending
	c.mu.RUnlock()

	status := Status{Version: current.Version(), State: current.State().String()}
	if pending != nil {
		status.Pending = pending.Version()
	}
	return status
}

func (c *Controller) HandlePush(ctx context.Context, payload string) error {
	return c.Current().HandlePush(ctx, payload)
}

func (c *Controller) HandleNotificationClick(action string) ClickResult {
	return c.Current().HandleNotificationClick(action)
}

func (c *Controller) HandlePeriodicSync(ctx context.Context, tag string) (bool, error) {
	return c.Current().HandlePeriodicSync(ctx, tag)
}

func (c *Controller) ShowEveningPrep(ctx context.Context) error {
	return c.Current().ShowEveningPrep(ctx)
}
