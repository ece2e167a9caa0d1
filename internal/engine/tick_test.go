package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func flatWorld(t *testing.T) *Simulation {
	return newTestSim(t, testSettings(), []string{
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})
}

func TestNewDriverRejectsBadInterval(t *testing.T) {
	s := flatWorld(t)
	if _, err := NewDriver(s, 0); err == nil {
		t.Fatal("zero interval accepted")
	}
	if _, err := NewDriver(s, -time.Second); err == nil {
		t.Fatal("negative interval accepted")
	}
}

func TestFastForwardSchedulesAndCaps(t *testing.T) {
	s := flatWorld(t)
	d, err := NewDriver(s, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.FastForward(90 * time.Second); err != nil {
		t.Fatal(err)
	}
	if d.PendingTicks() != 90 {
		t.Fatalf("pending %d, want 90", d.PendingTicks())
	}

	// Absence beyond a day is simply lost.
	if err := d.FastForward(48 * time.Hour); err != nil {
		t.Fatal(err)
	}
	if want := int(MaxCatchUpDuration / time.Second); d.PendingTicks() != want {
		t.Fatalf("pending %d, want capped at %d", d.PendingTicks(), want)
	}

	if err := d.FastForward(-time.Minute); err == nil {
		t.Fatal("a saved timestamp from the future should error")
	}
}

func TestStepRunsOneTickAndDrainsCatchUp(t *testing.T) {
	s := flatWorld(t)
	d, err := NewDriver(s, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.FastForward(3 * time.Second); err != nil {
		t.Fatal(err)
	}

	var hooked []uint64
	d.OnTick = func(tick uint64) error {
		hooked = append(hooked, tick)
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := d.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if d.PendingTicks() != 0 {
		t.Fatalf("pending %d after draining, want 0", d.PendingTicks())
	}
	if s.CurrentTick() != 3 {
		t.Fatalf("simulation at tick %d, want 3", s.CurrentTick())
	}
	if len(hooked) != 3 || hooked[2] != 3 {
		t.Fatalf("hook saw %v, want one call per tick", hooked)
	}
}

func TestStepWrapsHookError(t *testing.T) {
	s := flatWorld(t)
	d, err := NewDriver(s, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	hookErr := errors.New("disk full")
	d.OnTick = func(uint64) error { return hookErr }

	err = d.Step()
	if !errors.Is(err, hookErr) {
		t.Fatalf("step error %v, want the hook's", err)
	}
	if !strings.Contains(err.Error(), "tick hook") {
		t.Fatalf("error %q should say where it came from", err)
	}
}

func TestRunStopsOnHookError(t *testing.T) {
	s := flatWorld(t)
	d, err := NewDriver(s, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	d.Lock = &sync.Mutex{}

	hookErr := errors.New("stop here")
	d.OnTick = func(tick uint64) error {
		if tick >= 3 {
			return hookErr
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- d.Run() }()

	select {
	case err := <-done:
		if !errors.Is(err, hookErr) {
			t.Fatalf("run returned %v, want the hook error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on the hook error")
	}

	d.Lock.Lock()
	defer d.Lock.Unlock()
	if d.Running {
		t.Fatal("a failed run should leave the driver stopped")
	}
	if s.CurrentTick() != 3 {
		t.Fatalf("stopped at tick %d, want 3", s.CurrentTick())
	}
}

func TestStopHaltsRun(t *testing.T) {
	s := flatWorld(t)
	d, err := NewDriver(s, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	d.Lock = &sync.Mutex{}

	done := make(chan error, 1)
	go func() { done <- d.Run() }()

	time.Sleep(20 * time.Millisecond)
	d.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stopped run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not observe the stop")
	}
}
