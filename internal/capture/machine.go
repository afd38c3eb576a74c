package capture

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/ironsheep/docscan/internal/logging"
)

var (
	// ErrNoDocument rejects a manual capture while no valid quadrilateral
	// is held.
	ErrNoDocument = errors.New("capture: no document detected")

	// ErrCaptureInProgress rejects a capture request while another capture
	// or its cooldown is running.
	ErrCaptureInProgress = errors.New("capture: capture already in progress")
)

// State enumerates the capture cycle.
type State int

const (
	StateIdle State = iota
	StateCounting
	StateCapturing
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCounting:
		return "counting"
	case StateCapturing:
		return "capturing"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Phase is the capture animation step, derived from time since capture.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePre
	PhaseFlash
	PhasePost
)

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseFlash:
		return "flash"
	case PhasePost:
		return "post"
	default:
		return "idle"
	}
}

// MarshalText renders the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Animation phase boundaries measured from the capture.
const (
	PreDuration   = 200 * time.Millisecond
	FlashDuration = 200 * time.Millisecond
)

// Trigger records what started a capture.
type Trigger int

const (
	TriggerAuto Trigger = iota
	TriggerManual
)

func (t Trigger) String() string {
	if t == TriggerManual {
		return "manual"
	}
	return "auto"
}

// MarshalText renders the trigger by name.
func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Options configures a Machine.
type Options struct {
	AutoCapture bool
	// Threshold is the minimum overall score, inclusive.
	Threshold int
	Delay     time.Duration
	Cooldown  time.Duration
}

// DefaultOptions returns auto capture at 85 after 3s with an 800ms cooldown.
func DefaultOptions() Options {
	return Options{
		AutoCapture: true,
		Threshold:   85,
		Delay:       3 * time.Second,
		Cooldown:    800 * time.Millisecond,
	}
}

// Listener is called on each state transition.
type Listener func(prev, next State)

// Machine is the capture state machine for one frame stream. It is owned by
// the frame loop and is not safe for concurrent use.
type Machine struct {
	opts      Options
	logger    *slog.Logger
	state     State
	started   time.Time
	capturing time.Time
	trigger   Trigger
	listeners []Listener
}

// NewMachine returns an idle machine.
func NewMachine(opts Options, logger *slog.Logger) *Machine {
	return &Machine{opts: opts, logger: logging.OrDiscard(logger)}
}

// AddListener registers l for every subsequent transition.
func (m *Machine) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Options returns the machine's settings.
func (m *Machine) Options() Options { return m.opts }

// Trigger returns what started the current or most recent capture.
func (m *Machine) Trigger() Trigger { return m.trigger }

// Update advances the machine with one processed frame. valid reports
// whether the frame holds a valid quadrilateral. It returns true exactly
// when an automatic capture should fire on this frame; the machine is then
// Capturing until Complete or Abort.
func (m *Machine) Update(valid bool, overall int, now time.Time) bool {
	switch m.state {
	case StateCapturing:
		return false
	case StateCooldown:
		if now.Sub(m.capturing) < m.opts.Cooldown {
			return false
		}
		m.transition(StateIdle)
	}

	if !m.opts.AutoCapture || !valid || overall < m.opts.Threshold {
		m.resetCountdown()
		return false
	}

	if m.state == StateIdle {
		m.started = now
		m.transition(StateCounting)
	}
	if now.Sub(m.started) < m.opts.Delay {
		return false
	}

	m.begin(TriggerAuto, now)
	return true
}

// RequestManual starts a capture immediately, bypassing the countdown. It
// fails without changing state when a capture is already running or no
// valid quadrilateral is held.
func (m *Machine) RequestManual(valid bool, now time.Time) error {
	if m.Busy(now) {
		return ErrCaptureInProgress
	}
	if !valid {
		return ErrNoDocument
	}
	m.begin(TriggerManual, now)
	return nil
}

// Busy reports whether a capture or its cooldown is running at now.
func (m *Machine) Busy(now time.Time) bool {
	switch m.state {
	case StateCapturing:
		return true
	case StateCooldown:
		return now.Sub(m.capturing) < m.opts.Cooldown
	}
	return false
}

func (m *Machine) begin(trigger Trigger, now time.Time) {
	m.started = time.Time{}
	m.capturing = now
	m.trigger = trigger
	m.transition(StateCapturing)
}

// Complete moves a finished capture into cooldown.
func (m *Machine) Complete() {
	if m.state == StateCapturing {
		m.transition(StateCooldown)
	}
}

// Abort returns a failed capture straight to Idle.
func (m *Machine) Abort() {
	if m.state == StateCapturing {
		m.capturing = time.Time{}
		m.transition(StateIdle)
	}
}

// Reset returns to Idle and clears every timer.
func (m *Machine) Reset() {
	m.started = time.Time{}
	m.capturing = time.Time{}
	m.transition(StateIdle)
}

func (m *Machine) resetCountdown() {
	m.started = time.Time{}
	if m.state == StateCounting {
		m.transition(StateIdle)
	}
}

// Elapsed returns how long the countdown has been running, or zero outside
// Counting.
func (m *Machine) Elapsed(now time.Time) time.Duration {
	if m.state != StateCounting {
		return 0
	}
	return now.Sub(m.started)
}

// CountdownSeconds returns the whole seconds left before an automatic
// capture, rounded up. Outside Counting it is the full delay.
func (m *Machine) CountdownSeconds(now time.Time) int {
	remaining := m.opts.Delay - m.Elapsed(now)
	if remaining < 0 {
		remaining = 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

// Progress returns the countdown fraction completed, in [0, 1].
func (m *Machine) Progress(now time.Time) float64 {
	if m.opts.Delay <= 0 {
		if m.state == StateCounting {
			return 1
		}
		return 0
	}
	return math.Min(1, float64(m.Elapsed(now))/float64(m.opts.Delay))
}

// Phase returns the capture animation phase at now.
func (m *Machine) Phase(now time.Time) Phase {
	if m.state != StateCapturing && m.state != StateCooldown {
		return PhaseIdle
	}
	since := now.Sub(m.capturing)
	switch {
	case since < PreDuration:
		return PhasePre
	case since < PreDuration+FlashDuration:
		return PhaseFlash
	case m.state == StateCapturing || since < m.opts.Cooldown:
		return PhasePost
	default:
		return PhaseIdle
	}
}

func (m *Machine) transition(next State) {
	prev := m.state
	if prev == next {
		return
	}
	m.state = next
	m.logger.Debug("capture state transition", "from", prev.String(), "to", next.String())
	for _, l := range m.listeners {
		l(prev, next)
	}
}
