package tor

import (
	"errors"
	"testing"
	"time"
)

// TestDaemonNotStarted tests Daemon methods without starting Tor.
func TestDaemonNotStarted(t *testing.T) {
	t.Parallel()

	t.Run("keeps startup timeout", func(t *testing.T) {
		t.Parallel()

		d := NewDaemon(5 * time.Minute)
		if d.startupTimeout != 5*time.Minute {
			t.Errorf("expected timeout 5m, got %v", d.startupTimeout)
		}
	})

	t.Run("SocksAddr returns empty before start", func(t *testing.T) {
		t.Parallel()

		if NewDaemon(time.Minute).SocksAddr() != "" {
			t.Error("expected empty SocksAddr before start")
		}
	})

	t.Run("Running returns false before start", func(t *testing.T) {
		t.Parallel()

		if NewDaemon(time.Minute).Running() {
			t.Error("expected Running to be false before start")
		}
	})

	t.Run("Stop is safe to call on unstarted daemon", func(t *testing.T) {
		t.Parallel()

		if err := NewDaemon(time.Minute).Stop(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Client fails when not running", func(t *testing.T) {
		t.Parallel()

		_, err := NewDaemon(time.Minute).Client()
		if !errors.Is(err, ErrDaemonNotRunning) {
			t.Errorf("expected ErrDaemonNotRunning, got %v", err)
		}
	})
}
