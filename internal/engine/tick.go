// Package engine provides the tick simulation core: the Simulation
// aggregate, the per-tick system pipeline, and the Driver that advances
// simulated time.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FastForwardUnitInterval is the wall-clock cadence used while catching
// up: pending ticks run back-to-back at this much shorter interval. Only
// the cadence changes; tick order and count never do.
const FastForwardUnitInterval = time.Millisecond

// MaxCatchUpDuration caps how much absence is replayed on resume. Beyond
// one day the player simply loses simulation time.
const MaxCatchUpDuration = 24 * time.Hour

// Driver advances a simulation in real time, one logical tick per
// interval, with optional fast-forward catch-up after downtime.
type Driver struct {
	Sim      *Simulation
	Interval time.Duration // wall-clock time per tick at speed 1.0
	Speed    float64       // multiplier; 0 pauses
	Running  bool

	// Lock, when set, is held around every tick (and every Speed or
	// Running access in Run) so other goroutines can read simulation
	// state between ticks.
	Lock *sync.Mutex

	// OnTick runs after every simulated tick, e.g. for autosaving.
	OnTick func(tick uint64) error

	pendingTicks int
}

// NewDriver creates a driver at speed 1.0.
func NewDriver(sim *Simulation, interval time.Duration) (*Driver, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("non-positive tick interval %s", interval)
	}
	return &Driver{Sim: sim, Interval: interval, Speed: 1.0}, nil
}

// FastForward schedules catch-up ticks for elapsed real time, capped at
// one simulated day. A negative elapsed duration means the saved
// timestamp is ahead of the clock, which is a startup error.
func (d *Driver) FastForward(elapsed time.Duration) error {
	if elapsed < 0 {
		return fmt.Errorf("saved timestamp is %s in the future", -elapsed)
	}
	if elapsed > MaxCatchUpDuration {
		elapsed = MaxCatchUpDuration
	}
	d.pendingTicks = int(elapsed / d.Interval)
	if d.pendingTicks > 0 {
		slog.Info("fast-forwarding",
			"region", d.Sim.Region,
			"elapsed", elapsed.Round(time.Second).String(),
			"pending_ticks", d.pendingTicks,
		)
	}
	return nil
}

// PendingTicks returns the catch-up ticks not yet run.
func (d *Driver) PendingTicks() int {
	return d.pendingTicks
}

// Run advances the simulation until Stop is called or a tick fails.
// Pending catch-up ticks run first, back-to-back at the unit interval.
func (d *Driver) Run() error {
	d.lock()
	d.Running = true
	d.unlock()
	slog.Info("driver started", "region", d.Sim.Region, "tick", d.Sim.CurrentTick(), "interval", d.Interval.String())

	for {
		d.lock()
		if !d.Running {
			d.unlock()
			break
		}
		if d.Speed <= 0 && d.pendingTicks == 0 {
			d.unlock()
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		err := d.Step()

		target := d.Interval
		if d.pendingTicks > 0 {
			target = FastForwardUnitInterval
		} else if d.Speed != 1.0 {
			target = time.Duration(float64(d.Interval) / d.Speed)
		}
		if err != nil {
			d.Running = false
			d.unlock()
			return err
		}
		d.unlock()

		if elapsed := time.Since(start); elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("driver stopped", "region", d.Sim.Region, "tick", d.Sim.CurrentTick())
	return nil
}

// Step runs exactly one tick and the OnTick hook.
func (d *Driver) Step() error {
	if d.pendingTicks > 0 {
		d.pendingTicks--
	}
	if err := d.Sim.Tick(); err != nil {
		return fmt.Errorf("tick %d: %w", d.Sim.CurrentTick(), err)
	}
	if d.OnTick != nil {
		if err := d.OnTick(d.Sim.CurrentTick()); err != nil {
			return fmt.Errorf("tick hook: %w", err)
		}
	}
	return nil
}

// Stop halts Run after the current tick.
func (d *Driver) Stop() {
	d.lock()
	d.Running = false
	d.unlock()
}

func (d *Driver) lock() {
	if d.Lock != nil {
		d.Lock.Lock()
	}
}

func (d *Driver) unlock() {
	if d.Lock != nil {
		d.Lock.Unlock()
	}
}
