package tor

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// Daemon is a Tor process started and owned by htmlgrader.
// Bootstrapping takes one to three minutes on a cold start.
type Daemon struct {
	process        *tornago.TorProcess
	startupTimeout time.Duration
}

// NewDaemon creates an unstarted daemon.
func NewDaemon(startupTimeout time.Duration) *Daemon {
	return &Daemon{startupTimeout: startupTimeout}
}

// Start launches Tor on OS-assigned ports and blocks until it has
// bootstrapped or the startup timeout expires.
func (d *Daemon) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(d.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	d.process = process
	return nil
}

// Stop shuts the daemon down. Safe to call on an unstarted daemon.
func (d *Daemon) Stop() error {
	if d.process == nil {
		return nil
	}
	err := d.process.Stop()
	d.process = nil
	return err
}

// Running reports whether the daemon is up.
func (d *Daemon) Running() bool {
	return d.process != nil
}

// SocksAddr returns the SOCKS5 listener address, or "" when not running.
func (d *Daemon) SocksAddr() string {
	if d.process == nil {
		return ""
	}
	return d.process.SocksAddr()
}

// Client returns a Client for the daemon's SOCKS port.
func (d *Daemon) Client() (*Client, error) {
	if !d.Running() {
		return nil, ErrDaemonNotRunning
	}
	return NewClient(d.SocksAddr())
}
