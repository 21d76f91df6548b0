package wme

import (
	"context"
	"net/http"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure Probe implements the interface.
var _ driven.ReachabilityProbe = (*Probe)(nil)

// DefaultProbeTimeout bounds one reachability check.
const DefaultProbeTimeout = 3 * time.Second

// Probe checks whether the bridge is reachable. Any HTTP response
// counts as reachable; the check cares about transport, not about the
// bridge being healthy.
type Probe struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// NewProbe creates a probe against the given URL.
func NewProbe(url string) *Probe {
	return &Probe{
		client:  &http.Client{Timeout: DefaultProbeTimeout},
		url:     url,
		timeout: DefaultProbeTimeout,
	}
}

// Check performs one bounded reachability check. It never returns an
// error: failures, timeouts and cancellations all read as unreachable.
func (p *Probe) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
