package driven

import "context"

// ReachabilityProbe performs one bounded reachability check against
// the backend. Check never returns an error: any failure, timeout or
// cancellation reads as unreachable.
type ReachabilityProbe interface {
	Check(ctx context.Context) bool
}
