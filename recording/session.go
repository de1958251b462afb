// Package recording models a single self-measurement recording attempt:
// camera acquisition, a per-second elapsed counter with a hard cap, and a
// save step that runs exactly once. The capture device is an interface so
// the session logic stays independent of the actual media plumbing.
package recording

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MaxDurationSeconds is the hard cap for one recording attempt. The session
// auto-stops and saves when the counter reaches it.
const MaxDurationSeconds = 30

// CaptureDevice is the camera/microphone resource used during a session.
// Acquire is called when the session starts and Release is guaranteed to
// run on every exit path.
type CaptureDevice interface {
	Acquire() error
	Release()
}

// SaveFunc persists the finished recording. It receives the elapsed
// duration in whole seconds.
type SaveFunc func(durationSeconds int) error

// ErrNotStarted is returned when Tick or Stop is called before Start.
var ErrNotStarted = errors.New("recording: session not started")

// Session drives one recording attempt. All methods are safe for
// concurrent use; ticks and stops are serialized internally.
type Session struct {
	mu        sync.Mutex
	device    CaptureDevice
	save      SaveFunc
	elapsed   int
	started   bool
	finalized bool
	saveErr   error
}

// NewSession creates a session around a capture device and save callback.
func NewSession(device CaptureDevice, save SaveFunc) *Session {
	return &Session{device: device, save: save}
}

// Start acquires the capture device and resets the elapsed counter. When
// acquisition fails the device is not held and the error is returned.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started && !s.finalized {
		return nil
	}
	if err := s.device.Acquire(); err != nil {
		return err
	}
	s.started = true
	s.finalized = false
	s.elapsed = 0
	s.saveErr = nil
	return nil
}

// Tick advances the counter by one second. Reaching the cap stops the
// session and triggers the save exactly once; further ticks are no-ops.
func (s *Session) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if s.finalized {
		return nil
	}
	s.elapsed++
	if s.elapsed >= MaxDurationSeconds {
		s.elapsed = MaxDurationSeconds
		s.finalizeLocked(true)
	}
	return nil
}

// Stop ends the session early and saves the recording. Calling Stop after
// the session already finalized is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if s.finalized {
		return s.saveErr
	}
	s.finalizeLocked(true)
	return s.saveErr
}

// Cancel abandons the session without saving. The device is still
// released.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.finalized {
		return
	}
	s.finalizeLocked(false)
}

// finalizeLocked releases the device and optionally runs the save callback.
// Must be called with the mutex held; runs at most once per session.
func (s *Session) finalizeLocked(doSave bool) {
	s.finalized = true
	defer s.device.Release()
	if doSave && s.save != nil {
		s.saveErr = s.save(s.elapsed)
	}
}

// Elapsed returns the current counter value in seconds.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Done reports whether the session has finalized.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// SaveError returns the error of the save callback, if any.
func (s *Session) SaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Run starts the session and ticks it once per interval until it finalizes
// or ctx is cancelled. Cancellation abandons the recording and releases the
// device. A non-positive interval defaults to one second.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	if err := s.Start(); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Cancel()
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				return err
			}
			if s.Done() {
				return s.SaveError()
			}
		}
	}
}
