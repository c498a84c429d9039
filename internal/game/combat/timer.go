package combat

import (
	"sync"
	"time"
)

// TurnTimer calls a callback once per period until stopped. It drives
// simultaneous-turn matches, where the turn advances on a clock rather than on
// an explicit caller request. It is safe for concurrent use.
type TurnTimer struct {
	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	period time.Duration
	onFire func() bool
}

// NewTurnTimer starts a timer that calls onFire every period. When onFire
// returns false the timer stops re-arming.
//
// Precondition: period > 0; onFire must not be nil.
// Postcondition: Returns a running TurnTimer.
func NewTurnTimer(period time.Duration, onFire func() bool) *TurnTimer {
	tt := &TurnTimer{period: period, onFire: onFire}
	tt.mu.Lock()
	tt.armLocked()
	tt.mu.Unlock()
	return tt
}

// armLocked schedules the next firing under the current generation.
// Callers must hold tt.mu.
func (tt *TurnTimer) armLocked() {
	gen := tt.gen
	tt.timer = time.AfterFunc(tt.period, func() {
		tt.mu.Lock()
		live := gen == tt.gen
		tt.mu.Unlock()
		if !live || !tt.onFire() {
			return
		}
		tt.mu.Lock()
		if gen == tt.gen {
			tt.armLocked()
		}
		tt.mu.Unlock()
	})
}

// Reset restarts the countdown with a full period from now.
//
// Postcondition: the next callback fires one period after Reset returns, unless stopped.
func (tt *TurnTimer) Reset() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.gen++
	tt.timer.Stop()
	tt.armLocked()
}

// Stop prevents further callbacks. Safe to call multiple times.
//
// Postcondition: onFire is not called again after Stop returns, except for a call already in progress.
func (tt *TurnTimer) Stop() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.gen++
	tt.timer.Stop()
}
