package tracking

import (
	"context"
	"sync"
	"time"
)

// Cooldown throttles progress updates per key. The first update and every
// terminal update pass straight through. Updates arriving within interval of
// the last delivery are held, and only the latest held one is delivered once
// the interval expires. Deliveries to inner are serialized, so a held update
// released by its timer never lands after a later terminal update.
type Cooldown struct {
	inner    Reporter
	interval time.Duration
	deliver  sync.Mutex
	mu       sync.Mutex
	keys     map[string]*throttle
}

type throttle struct {
	sent  time.Time
	held  *Progress
	timer *time.Timer
}

func (t *throttle) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// NewCooldown wraps inner with a per-key throttle.
func NewCooldown(inner Reporter, interval time.Duration) *Cooldown {
	return &Cooldown{
		inner:    inner,
		interval: interval,
		keys:     make(map[string]*throttle),
	}
}

// OnProgress delivers or holds p.
func (c *Cooldown) OnProgress(ctx context.Context, p Progress) error {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	if !c.admit(p) {
		return nil
	}
	return c.inner.OnProgress(ctx, p)
}

// admit reports whether p is to be delivered now. Otherwise p replaces any
// held update for its key and a release is scheduled.
func (c *Cooldown) admit(p Progress) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := p.Key()
	t := c.keys[key]

	if p.Done() {
		if t != nil {
			t.stop()
			delete(c.keys, key)
		}
		return true
	}

	if t == nil {
		t = &throttle{}
		c.keys[key] = t
	}

	wait := c.interval - time.Since(t.sent)
	if wait <= 0 {
		t.stop()
		t.held = nil
		t.sent = time.Now()
		return true
	}

	t.held = &p
	if t.timer == nil {
		t.timer = time.AfterFunc(wait, func() { c.release(key) })
	}
	return false
}

func (c *Cooldown) release(key string) {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	t := c.keys[key]
	if t == nil {
		c.mu.Unlock()
		return
	}
	t.timer = nil
	held := t.held
	if held != nil {
		t.held = nil
		t.sent = time.Now()
	}
	c.mu.Unlock()

	if held != nil {
		_ = c.inner.OnProgress(context.Background(), *held)
	}
}

// Close delivers every held update and stops all timers.
func (c *Cooldown) Close() error {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	keys := c.keys
	c.keys = make(map[string]*throttle)
	c.mu.Unlock()

	for _, t := range keys {
		t.stop()
		if t.held != nil {
			_ = c.inner.OnProgress(context.Background(), *t.held)
		}
	}
	return nil
}
