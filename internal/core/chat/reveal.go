package chat

import (
	"strings"
	"sync"
	"time"
)

// RevealState tracks the lifecycle of one message's incremental display.
type RevealState int

const (
	RevealIdle RevealState = iota
	Revealing
	RevealComplete
)

// DefaultRevealDelay is the fixed cadence between revealed words.
const DefaultRevealDelay = 50 * time.Millisecond

// UpdateFunc receives the currently visible content after each tick. done is
// true exactly once, on the terminal update.
type UpdateFunc func(visible string, done bool)

// Scheduler runs fn once after d and returns a cancel function. Injectable so
// tests can drive ticks without real timers.
type Scheduler func(d time.Duration, fn func()) (cancel func())

func timerScheduler(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Revealer reveals an already-fully-received response one whitespace-delimited
// word per tick, simulating live generation. It is an explicit cancellable
// task: Start begins ticking, Cancel guarantees no update fires afterwards.
// Each message instance owns its own timer handle; revealers never share
// state.
//
// The update callback is invoked with the revealer's lock held and must not
// call back into the Revealer.
type Revealer struct {
	mu       sync.Mutex
	response string
	words    []string
	shown    int
	state    RevealState
	delay    time.Duration
	schedule Scheduler
	cancel   func()
	onUpdate UpdateFunc
}

// RevealOption configures a Revealer.
type RevealOption func(*Revealer)

// WithDelay overrides the fixed tick cadence.
func WithDelay(d time.Duration) RevealOption {
	return func(r *Revealer) { r.delay = d }
}

// WithScheduler overrides the timer implementation.
func WithScheduler(s Scheduler) RevealOption {
	return func(r *Revealer) { r.schedule = s }
}

// NewRevealer prepares a reveal for the given visible response text.
func NewRevealer(response string, opts ...RevealOption) *Revealer {
	r := &Revealer{
		response: response,
		words:    strings.Fields(response),
		state:    RevealIdle,
		delay:    DefaultRevealDelay,
		schedule: timerScheduler,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins the reveal with zero words shown. A response with no words
// completes immediately without ticking.
func (r *Revealer) Start(onUpdate UpdateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != RevealIdle {
		return
	}
	r.onUpdate = onUpdate
	r.state = Revealing
	if len(r.words) == 0 {
		r.complete()
		return
	}
	r.cancel = r.schedule(r.delay, r.tick)
}

// Cancel stops the reveal. Once Cancel returns, no further update fires.
// Cancelling a completed reveal is a no-op.
func (r *Revealer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Revealing {
		return
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.state = RevealIdle
}

// State reports the current lifecycle state.
func (r *Revealer) State() RevealState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Revealer) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A cancelled timer can still fire if it was already in flight; the state
	// check makes teardown final.
	if r.state != Revealing {
		return
	}
	r.shown++
	if r.shown < len(r.words) {
		if r.onUpdate != nil {
			r.onUpdate(strings.Join(r.words[:r.shown], " "), false)
		}
		r.cancel = r.schedule(r.delay, r.tick)
		return
	}
	r.complete()
}

// complete sets the terminal state and emits the original response string
// byte-for-byte, not the word-join reconstruction, so whitespace never
// drifts. Caller holds the lock.
func (r *Revealer) complete() {
	r.state = RevealComplete
	r.cancel = nil
	if r.onUpdate != nil {
		r.onUpdate(r.response, true)
	}
}
