package bridge

import (
	"context"
	"time"
)

// Config holds the controller's operating parameters.
type Config struct {
	// Capability is the model id that must be present on the device before
	// telemetry polling starts.
	Capability uint16

	// PollInterval is the telemetry polling cadence.
	PollInterval time.Duration

	// RepublishInterval is how often retained discovery messages are
	// refreshed on the broker.
	RepublishInterval time.Duration
}

// Controller composes the two links, the publisher and the scheduler into
// the bridge run loop. It exclusively owns the ConnectionState for the
// process lifetime; everything runs on the loop's single goroutine.
type Controller struct {
	telemetry TelemetryLink
	bus       BusLink
	pub       *Publisher
	cfg       Config
	log       Logger

	state         ConnectionState
	sched         *Scheduler
	lastDiscovery time.Time
}

// NewController creates a Controller. Run does the rest.
func NewController(t TelemetryLink, b BusLink, pub *Publisher, cfg Config, log Logger) *Controller {
	return &Controller{
		telemetry: t,
		bus:       b,
		pub:       pub,
		cfg:       cfg,
		log:       log,
	}
}

// Run drives the bridge until ctx is cancelled. Each iteration steps the
// telemetry link (backing off and restarting the iteration on failure, the
// bus is not touched), steps the bus link (backing off but carrying on,
// polling continues with nowhere to publish), then polls and publishes one
// snapshot. Both links are released on the way out regardless of which
// branch the cancellation lands in.
func (c *Controller) Run(ctx context.Context) error {
	c.sched = NewScheduler(time.Now(), c.cfg.PollInterval)
	defer c.shutdown()

	c.log.Info("bridge started", "poll_interval", c.cfg.PollInterval)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if delay, err := stepTelemetryLink(c.telemetry, c.cfg.Capability, &c.state, c.log); err != nil {
			c.log.Warn("telemetry link down",
				"error", err,
				"retry_in", delay,
				"attempts", c.state.TelemetryRetries+c.state.VerificationRetries)
			if !c.sleep(ctx, delay) {
				return nil
			}
			c.sched.Push(time.Now(), 0)
			continue
		}

		if delay, err := stepBusLink(c.bus, c.publishDiscovery, &c.state, c.log); err != nil {
			c.log.Warn("bus link down",
				"error", err,
				"retry_in", delay,
				"attempts", c.state.BusRetries)
			if !c.sleep(ctx, delay) {
				return nil
			}
			c.sched.Push(time.Now(), 0)
		}

		c.maintainDiscovery()
		c.pollOnce()

		if !c.sleep(ctx, c.sched.NextSleep(time.Now())) {
			return nil
		}
	}
}

// publishDiscovery publishes the discovery set for the known identity and
// records when it last succeeded.
func (c *Controller) publishDiscovery() error {
	if err := c.pub.PublishDiscovery(*c.state.Identity); err != nil {
		return err
	}
	c.lastDiscovery = time.Now()
	return nil
}

// maintainDiscovery retries a discovery set that has not gone out yet and
// refreshes a published one every RepublishInterval, in case the broker
// dropped retained state.
func (c *Controller) maintainDiscovery() {
	if !c.state.BusConnected || c.state.Identity == nil {
		return
	}
	if c.state.DiscoveryPublished && time.Since(c.lastDiscovery) < c.cfg.RepublishInterval {
		return
	}
	if err := c.publishDiscovery(); err != nil {
		c.log.Warn("discovery publish failed, will retry next cycle", "error", err)
		return
	}
	c.state.DiscoveryPublished = true
}

// pollOnce reads one snapshot and publishes it if there is a connected bus
// and a known identity to address it with.
func (c *Controller) pollOnce() {
	if !c.state.TelemetryConnected || !c.state.CapabilityVerified {
		return
	}

	snap, err := c.telemetry.ReadSnapshot()
	if err != nil {
		c.log.Error("telemetry read failed, forcing reconnect", "error", err)
		onTelemetryReadFailure(&c.state)
		return
	}

	if !c.state.BusConnected {
		c.log.Debug("snapshot dropped, bus disconnected", "total_power", snap.TotalPower)
		return
	}
	if c.state.Identity == nil {
		c.log.Debug("snapshot dropped, device identity unknown")
		return
	}

	if err := c.pub.PublishSnapshot(*c.state.Identity, snap); err != nil {
		c.log.Warn("snapshot publish failed", "error", err)
		onPublishFailure(c.bus, &c.state, c.log)
		return
	}
	c.log.Debug("snapshot published", "total_power", snap.TotalPower, "channels", len(snap.Channels))
}

// sleep blocks for d or until ctx is cancelled. Returns false on
// cancellation.
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// shutdown releases both links. Close errors are logged, never raised; both
// closes always run.
func (c *Controller) shutdown() {
	c.log.Info("bridge stopping")
	if err := c.telemetry.Close(); err != nil {
		c.log.Warn("telemetry link close failed", "error", err)
	}
	if err := c.bus.Close(); err != nil {
		c.log.Warn("bus link close failed", "error", err)
	}
}
