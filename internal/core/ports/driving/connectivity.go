package driving

import "context"

// ConnectivityMonitor owns the process's view of backend reachability.
// Nothing outside the monitor may flip the state.
type ConnectivityMonitor interface {
	// Start begins the periodic probe loop. Blocks until Stop is
	// called or the context is cancelled.
	Start(ctx context.Context) error

	// Stop shuts the loop down and waits for an in-flight probe.
	Stop() error

	// Online reports the result of the most recent completed probe.
	Online() bool

	// Notify triggers an immediate re-check, bypassing the interval.
	// Used when the transport layer reports a connectivity change.
	Notify(ctx context.Context)
}
