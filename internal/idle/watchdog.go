// Package idle detects abandoned play sessions. A watchdog sits beside each
// session and walks it through Active, Warning and Expired based on how long
// ago the player last interacted.
package idle

import (
	"log/slog"
	"sync"
	"time"

	"github.com/myrjola/spotfake/internal/clock"
)

type State string

const (
	StateActive  State = "active"
	StateWarning State = "warning"
	StateExpired State = "expired"
	StateStopped State = "stopped"
)

const (
	// idleTimeout is how long without activity before the player is warned.
	idleTimeout = 60 * time.Second
	// graceTimeout is how long the warning stays up before the session expires.
	graceTimeout = 15 * time.Second
	// touchInterval throttles activity notifications. Touches closer together
	// than this are dropped so a busy player does not rearm the timer on every
	// mouse move.
	touchInterval = time.Second
)

// Option tweaks watchdog timings, mainly to keep tests short.
type Option func(*Watchdog)

func WithIdleTimeout(d time.Duration) Option {
	return func(w *Watchdog) { w.idleTimeout = d }
}

func WithGraceTimeout(d time.Duration) Option {
	return func(w *Watchdog) { w.graceTimeout = d }
}

// Watchdog tracks player activity for one session. All methods are safe for
// concurrent use.
type Watchdog struct {
	mu sync.Mutex

	clk          clock.Clock
	logger       *slog.Logger
	idleTimeout  time.Duration
	graceTimeout time.Duration

	state     State
	lastTouch time.Time
	timer     clock.Timer

	// onWarn and onExpire fire at most once per state entry, outside the lock.
	onWarn   func()
	onExpire func()
}

// New builds a watchdog in the Active state. Call Start to arm it. onExpire is
// required; onWarn may be nil.
func New(clk clock.Clock, logger *slog.Logger, onWarn, onExpire func(), opts ...Option) *Watchdog {
	w := &Watchdog{
		clk:          clk,
		logger:       logger,
		idleTimeout:  idleTimeout,
		graceTimeout: graceTimeout,
		state:        StateActive,
		onWarn:       onWarn,
		onExpire:     onExpire,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start arms the idle timer. It is a no-op on any later call.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil || w.state != StateActive {
		return
	}
	w.lastTouch = w.clk.Now()
	w.armLocked(w.idleTimeout, w.warn)
}

// Touch records player activity. It only rearms the idle timer while Active,
// and at most once per throttle interval. A warned session must call Resume
// instead; passive activity does not dismiss the warning.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateActive || w.timer == nil {
		return
	}
	now := w.clk.Now()
	if now.Sub(w.lastTouch) < touchInterval {
		return
	}
	w.lastTouch = now
	w.armLocked(w.idleTimeout, w.warn)
}

// Resume is the explicit continue action from the warning dialog. It returns
// the session to Active and rearms the idle timer.
func (w *Watchdog) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateWarning {
		return
	}
	w.state = StateActive
	w.lastTouch = w.clk.Now()
	w.armLocked(w.idleTimeout, w.warn)
}

// Restart returns the watchdog to Active with a fresh idle window, dismissing
// a pending warning. It is how the game hands the watchdog over to the
// post-game screens. Expired and stopped watchdogs stay that way.
func (w *Watchdog) Restart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateActive && w.state != StateWarning {
		return
	}
	w.state = StateActive
	w.lastTouch = w.clk.Now()
	w.armLocked(w.idleTimeout, w.warn)
}

// Stop tears the watchdog down. Pending timers are cancelled and no callback
// fires afterwards.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateStopped {
		return
	}
	w.state = StateStopped
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// State reports the current state.
func (w *Watchdog) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watchdog) armLocked(d time.Duration, fire func()) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = w.clk.AfterFunc(d, fire)
}

func (w *Watchdog) warn() {
	w.mu.Lock()
	if w.state != StateActive {
		w.mu.Unlock()
		return
	}
	w.state = StateWarning
	w.armLocked(w.graceTimeout, w.expire)
	onWarn := w.onWarn
	w.mu.Unlock()

	w.logger.Debug("idle warning raised")
	if onWarn != nil {
		onWarn()
	}
}

func (w *Watchdog) expire() {
	w.mu.Lock()
	if w.state != StateWarning {
		w.mu.Unlock()
		return
	}
	w.state = StateExpired
	w.timer = nil
	onExpire := w.onExpire
	w.mu.Unlock()

	w.logger.Debug("idle session expired")
	if onExpire != nil {
		onExpire()
	}
}
