// Package progress holds the observable state of the one bulk download
// job a UI session may run at a time. The tracker is an explicit state
// machine (Inactive -> Active -> Completed or Errored -> Inactive)
// rather than ambient mutable state; observers get a snapshot on every
// transition.
package progress

import (
	"errors"
	"sync"
	"time"
)

// ErrJobActive is returned when Start is called while another job is
// still active. Two jobs must never interleave on one tracker.
var ErrJobActive = errors.New("progress: another job is already active")

// Snapshot is the externally visible state at one point in time.
// Completed and Errored are mutually exclusive; Current never exceeds
// Total.
type Snapshot struct {
	Active       bool   `json:"active"`
	Title        string `json:"title"`
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	CurrentName  string `json:"current_name"`
	Completed    bool   `json:"completed"`
	Errored      bool   `json:"errored"`
	ErrorMessage string `json:"error_message,omitempty"`
}

const defaultResetDelay = 5 * time.Second

// Tracker is safe for concurrent use, though in practice a single job
// drives it at a time.
type Tracker struct {
	mu         sync.Mutex
	snap       Snapshot
	resetDelay time.Duration
	resetTimer *time.Timer
	notify     func(Snapshot)
}

func NewTracker() *Tracker {
	return &Tracker{resetDelay: defaultResetDelay}
}

// SetNotify registers the observer called after every state change.
// The callback runs with the tracker unlocked and receives a copy.
func (t *Tracker) SetNotify(fn func(Snapshot)) {
	t.mu.Lock()
	t.notify = fn
	t.mu.Unlock()
}

// SetResetDelay overrides how long a completed job stays visible
// before the tracker returns to Inactive.
func (t *Tracker) SetResetDelay(d time.Duration) {
	t.mu.Lock()
	t.resetDelay = d
	t.mu.Unlock()
}

// Start transitions to Active and resets counters. Valid from
// Inactive, Completed or Errored; starting while a job is Active is a
// caller error.
func (t *Tracker) Start(title string, total int) error {
	t.mu.Lock()
	if t.snap.Active {
		t.mu.Unlock()
		return ErrJobActive
	}
	t.stopResetTimerLocked()
	if total < 0 {
		total = 0
	}
	t.snap = Snapshot{Active: true, Title: title, Total: total}
	t.notifyLocked()
	return nil
}

// Update reports progress while Active. Ignored in any other state, so
// a straggling update after an error cannot resurrect the job.
func (t *Tracker) Update(current int, name string) {
	t.mu.Lock()
	if !t.snap.Active {
		t.mu.Unlock()
		return
	}
	if current < 0 {
		current = 0
	}
	if current > t.snap.Total {
		current = t.snap.Total
	}
	t.snap.Current = current
	t.snap.CurrentName = name
	t.notifyLocked()
}

// Complete transitions Active -> Completed, snapping current to total.
// The tracker auto-resets to Inactive after the display delay.
func (t *Tracker) Complete() {
	t.mu.Lock()
	if !t.snap.Active {
		t.mu.Unlock()
		return
	}
	t.snap.Active = false
	t.snap.Completed = true
	t.snap.Current = t.snap.Total
	t.resetTimer = time.AfterFunc(t.resetDelay, t.Reset)
	t.notifyLocked()
}

// Error transitions Active -> Errored and latches the message. Only
// fatal, whole-job failures land here; per-item skips do not. The
// tracker stays Errored until Reset.
func (t *Tracker) Error(message string) {
	t.mu.Lock()
	if !t.snap.Active {
		t.mu.Unlock()
		return
	}
	t.snap.Active = false
	t.snap.Errored = true
	t.snap.ErrorMessage = message
	t.notifyLocked()
}

// Reset returns to Inactive from any state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.stopResetTimerLocked()
	t.snap = Snapshot{}
	t.notifyLocked()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *Tracker) stopResetTimerLocked() {
	if t.resetTimer != nil {
		t.resetTimer.Stop()
		t.resetTimer = nil
	}
}

// notifyLocked fires the observer outside the lock and releases it.
func (t *Tracker) notifyLocked() {
	fn := t.notify
	snap := t.snap
	t.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
