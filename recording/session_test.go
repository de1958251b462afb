package recording

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeDevice tracks acquisition so tests can assert the camera is never
// left held open.
type fakeDevice struct {
	acquired   int
	released   int
	acquireErr error
}

func (d *fakeDevice) Acquire() error {
	if d.acquireErr != nil {
		return d.acquireErr
	}
	d.acquired++
	return nil
}

func (d *fakeDevice) Release() { d.released++ }

func (d *fakeDevice) held() bool { return d.acquired != d.released }

func TestAutoStopAtCap(t *testing.T) {
	dev := &fakeDevice{}
	saves := 0
	savedDuration := -1
	s := NewSession(dev, func(d int) error {
		saves++
		savedDuration = d
		return nil
	})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Run well past the cap; ticks beyond 30 must do nothing.
	for i := 0; i < 45; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
	}

	if !s.Done() {
		t.Fatal("session should have auto-stopped")
	}
	if saves != 1 {
		t.Fatalf("save ran %d times, want exactly once", saves)
	}
	if savedDuration != MaxDurationSeconds {
		t.Fatalf("saved duration = %d, want %d", savedDuration, MaxDurationSeconds)
	}
	if s.Elapsed() != MaxDurationSeconds {
		t.Fatalf("elapsed = %d, want %d", s.Elapsed(), MaxDurationSeconds)
	}
	if dev.held() {
		t.Fatal("device still held after auto-stop")
	}
}

func TestManualStopSavesOnce(t *testing.T) {
	dev := &fakeDevice{}
	saves := 0
	s := NewSession(dev, func(d int) error {
		saves++
		if d != 12 {
			t.Fatalf("saved duration = %d, want 12", d)
		}
		return nil
	})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 12; i++ {
		_ = s.Tick()
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Second stop and further ticks are no-ops.
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	_ = s.Tick()

	if saves != 1 {
		t.Fatalf("save ran %d times, want exactly once", saves)
	}
	if dev.held() {
		t.Fatal("device still held after stop")
	}
}

func TestCancelReleasesWithoutSave(t *testing.T) {
	dev := &fakeDevice{}
	saves := 0
	s := NewSession(dev, func(int) error { saves++; return nil })

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_ = s.Tick()
	s.Cancel()

	if saves != 0 {
		t.Fatal("cancel must not save")
	}
	if !s.Done() {
		t.Fatal("cancelled session should be finalized")
	}
	if dev.held() {
		t.Fatal("device still held after cancel")
	}
}

func TestAcquireFailureHoldsNothing(t *testing.T) {
	dev := &fakeDevice{acquireErr: errors.New("permission denied")}
	s := NewSession(dev, func(int) error { return nil })

	if err := s.Start(); err == nil {
		t.Fatal("Start should surface acquire error")
	}
	if dev.held() {
		t.Fatal("device must not be held after failed acquire")
	}
	if err := s.Tick(); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Tick before start = %v, want ErrNotStarted", err)
	}
}

func TestSaveErrorStillReleases(t *testing.T) {
	dev := &fakeDevice{}
	saveErr := errors.New("upload failed")
	s := NewSession(dev, func(int) error { return saveErr })

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < MaxDurationSeconds; i++ {
		_ = s.Tick()
	}
	if !errors.Is(s.SaveError(), saveErr) {
		t.Fatalf("SaveError = %v, want %v", s.SaveError(), saveErr)
	}
	if dev.held() {
		t.Fatal("device still held after save failure")
	}
}

func TestRunTicksToCapAndSaves(t *testing.T) {
	dev := &fakeDevice{}
	saves := 0
	savedDuration := -1
	s := NewSession(dev, func(d int) error {
		saves++
		savedDuration = d
		return nil
	})

	if err := s.Run(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if saves != 1 {
		t.Fatalf("save ran %d times, want exactly once", saves)
	}
	if savedDuration != MaxDurationSeconds {
		t.Fatalf("saved duration = %d, want %d", savedDuration, MaxDurationSeconds)
	}
	if dev.held() {
		t.Fatal("device still held after run finished")
	}
}

func TestRunCancelAbandonsRecording(t *testing.T) {
	dev := &fakeDevice{}
	saves := 0
	s := NewSession(dev, func(int) error { saves++; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(5*time.Millisecond, cancel)
	defer timer.Stop()

	if err := s.Run(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}

	if saves != 0 {
		t.Fatal("cancelled run must not save")
	}
	if !s.Done() {
		t.Fatal("cancelled run should finalize the session")
	}
	if dev.held() {
		t.Fatal("device still held after cancelled run")
	}
}
