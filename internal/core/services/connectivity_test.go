package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectivity_StartsOffline(t *testing.T) {
	probe := &mockProbe{}
	monitor := NewConnectivity(probe, time.Hour)

	assert.False(t, monitor.Online())
}

func TestConnectivity_NotifyProbesImmediately(t *testing.T) {
	probe := &mockProbe{reachable: true}
	monitor := NewConnectivity(probe, time.Hour)

	monitor.Notify(context.Background())

	assert.True(t, monitor.Online())
	assert.Equal(t, 1, probe.checkCount())
}

func TestConnectivity_RestoredCallbackFiresOncePerEdge(t *testing.T) {
	probe := &mockProbe{}
	monitor := NewConnectivity(probe, time.Hour)

	var mu sync.Mutex
	fired := 0
	monitor.BindOnRestored(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	ctx := context.Background()

	// Offline to offline: no edge.
	monitor.Notify(ctx)
	monitor.Notify(ctx)

	// Offline to online: one edge.
	probe.set(true)
	monitor.Notify(ctx)

	// Online to online: still one.
	monitor.Notify(ctx)

	// Drop and restore: a second edge.
	probe.set(false)
	monitor.Notify(ctx)
	probe.set(true)
	monitor.Notify(ctx)

	require.NoError(t, monitor.Stop()) // waits for callback goroutines

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, fired)
}

func TestConnectivity_LossFlipsStateWithoutCallback(t *testing.T) {
	probe := &mockProbe{reachable: true}
	monitor := NewConnectivity(probe, time.Hour)

	var mu sync.Mutex
	fired := 0
	monitor.BindOnRestored(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	ctx := context.Background()
	monitor.Notify(ctx)
	require.True(t, monitor.Online())

	probe.set(false)
	monitor.Notify(ctx)

	assert.False(t, monitor.Online())
	require.NoError(t, monitor.Stop()) // waits for callback goroutines

	// Only the initial restore edge fired; the loss added nothing.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired)
}

func TestConnectivity_StartStop(t *testing.T) {
	probe := &mockProbe{reachable: true}
	monitor := NewConnectivity(probe, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = monitor.Start(ctx)
	}()

	// The initial probe runs before the first tick.
	require.Eventually(t, monitor.Online, time.Second, 5*time.Millisecond)

	err := monitor.Stop()
	require.NoError(t, err)
	wg.Wait()
}

func TestConnectivity_StopWithoutStart(t *testing.T) {
	probe := &mockProbe{}
	monitor := NewConnectivity(probe, time.Hour)

	err := monitor.Stop()
	require.NoError(t, err)
}

func TestConnectivity_PeriodicProbing(t *testing.T) {
	probe := &mockProbe{reachable: true}
	monitor := NewConnectivity(probe, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = monitor.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return probe.checkCount() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, monitor.Stop())
	wg.Wait()
}
