package authsession_test

import (
	"sync/atomic"
	"testing"
	"time"

	"lexsite-service/internal/pkg/authsession"

	"github.com/stretchr/testify/require"
)

func TestActivityMonitorFiresAfterQuietPeriod(t *testing.T) {
	var fires atomic.Int32
	m := authsession.NewActivityMonitor(30*time.Millisecond, func() { fires.Add(1) })
	defer m.Stop()

	m.Start()

	require.Eventually(t, func() bool {
		return fires.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestActivityMonitorTouchResetsTimer(t *testing.T) {
	var fires atomic.Int32
	m := authsession.NewActivityMonitor(60*time.Millisecond, func() { fires.Add(1) })
	defer m.Stop()

	m.Start()

	// Keep touching inside the quiet period; the refresh must not fire.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		m.Touch()
	}
	require.Zero(t, fires.Load())

	// Going quiet lets the debounce complete.
	require.Eventually(t, func() bool {
		return fires.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestActivityMonitorStopCancelsPendingTimer(t *testing.T) {
	var fires atomic.Int32
	m := authsession.NewActivityMonitor(30*time.Millisecond, func() { fires.Add(1) })

	m.Start()
	m.Stop()

	time.Sleep(80 * time.Millisecond)
	require.Zero(t, fires.Load())
}

func TestActivityMonitorTouchAfterStopIsNoop(t *testing.T) {
	var fires atomic.Int32
	m := authsession.NewActivityMonitor(20*time.Millisecond, func() { fires.Add(1) })

	m.Start()
	m.Stop()
	m.Touch()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, fires.Load())
}
