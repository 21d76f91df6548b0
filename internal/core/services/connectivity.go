package services

import (
	"context"
	"sync"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
	"github.com/fieldbill/fieldbill-cli/internal/logger"
)

// DefaultProbeInterval is how often the monitor re-checks reachability
// when nothing else triggers a check.
const DefaultProbeInterval = 30 * time.Second

// Ensure Connectivity implements the interface.
var _ driving.ConnectivityMonitor = (*Connectivity)(nil)

// Connectivity owns the process's online/offline state. The state only
// changes as the result of a completed probe; consumers read it through
// Online and never probe themselves.
type Connectivity struct {
	probe    driven.ReachabilityProbe
	interval time.Duration

	mu     sync.Mutex
	online bool

	// onRestored fires once per offline-to-online transition. Bound
	// after construction, before Start.
	onRestored func()

	// checkMu serialises probes. Interval ticks try-lock and skip when
	// a probe is already in flight; Notify waits its turn instead so a
	// transport hint always produces a fresh result.
	checkMu sync.Mutex

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewConnectivity creates a monitor. The state starts offline until the
// first probe completes. A non-positive interval falls back to the
// default.
func NewConnectivity(probe driven.ReachabilityProbe, interval time.Duration) *Connectivity {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Connectivity{
		probe:    probe,
		interval: interval,
	}
}

// BindOnRestored wires the callback fired when connectivity returns.
// Must be called before Start.
func (c *Connectivity) BindOnRestored(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRestored = fn
}

// Online reports the result of the most recent completed probe.
func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Start begins the probe loop. This method blocks until Stop is called
// or the context is cancelled.
func (c *Connectivity) Start(ctx context.Context) error {
	c.runMu.Lock()
	if c.running {
		c.runMu.Unlock()
		return nil // Already running
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.runMu.Unlock()

	// Establish the initial state before the first tick.
	c.check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		case <-ticker.C:
			// Skip the tick if a probe is already in flight.
			if !c.checkMu.TryLock() {
				continue
			}
			c.checkLocked(ctx)
		}
	}
}

// Stop gracefully shuts the monitor down.
func (c *Connectivity) Stop() error {
	c.runMu.Lock()
	if c.running {
		c.running = false
		close(c.stopCh)
	}
	c.runMu.Unlock()

	// Wait for in-flight callbacks even when only Notify ever ran
	c.wg.Wait()

	return nil
}

// Notify triggers an immediate re-check. Unlike an interval tick it is
// never dropped: transport-level hints are worth a definitive probe.
func (c *Connectivity) Notify(ctx context.Context) {
	c.check(ctx)
}

// check runs one probe, waiting for any in-flight probe first.
func (c *Connectivity) check(ctx context.Context) {
	c.checkMu.Lock()
	c.checkLocked(ctx)
}

// checkLocked runs one probe and applies the state transition. The
// caller holds checkMu; it is released here.
func (c *Connectivity) checkLocked(ctx context.Context) {
	defer c.checkMu.Unlock()

	reachable := c.probe.Check(ctx)

	c.mu.Lock()
	was := c.online
	c.online = reachable
	restored := c.onRestored
	c.mu.Unlock()

	if was == reachable {
		return
	}

	if reachable {
		logger.Info("connectivity restored")
		if restored != nil {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				restored()
			}()
		}
	} else {
		logger.Info("connectivity lost, queueing documents locally")
	}
}
