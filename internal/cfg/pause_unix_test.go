//go:build unix

package cfg

import (
	"sync"
	"syscall"
	"testing"
	"time"
)

// fakePausable counts pause toggles.
type fakePausable struct {
	mu      sync.Mutex
	paused  bool
	toggles int
}

func (f *fakePausable) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	f.toggles++
	return nil
}

func (f *fakePausable) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	f.toggles++
	return nil
}

func (f *fakePausable) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakePausable) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toggles
}

// TestPauseToggleSignal checks SIGUSR1 alternates between pause and resume.
func TestPauseToggleSignal(t *testing.T) {
	f := &fakePausable{}
	stop := watchPauseToggle(f)
	defer stop()

	for i, wantPaused := range []bool{true, false} {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
			t.Fatal(err)
		}
		deadline := time.Now().Add(5 * time.Second)
		for f.count() < i+1 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if f.count() != i+1 || f.Paused() != wantPaused {
			t.Fatalf("after signal %d: expected paused=%v, got %v (%d toggles)", i+1, wantPaused, f.Paused(), f.count())
		}
	}
}
