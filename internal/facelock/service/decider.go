package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/types"
)

var (
	ErrPINSessionActive = errors.New("a PIN session is already active")
	ErrNoPINSession     = errors.New("no PIN session is active")
)

// Decision is an access outcome ready to be notified to the coordinator.
type Decision struct {
	UserName   string
	Method     string
	Success    bool
	Confidence float64
}

// DecisionSink receives emitted decisions.  The recognition agent wires an
// HTTP notifier here; tests wire a recorder.
type DecisionSink interface {
	Notify(ctx context.Context, d Decision) error
}

// PINValidator resolves a PIN to an active identity.  The roster implements
// this.
type PINValidator interface {
	LookupByPIN(ctx context.Context, pin string) (name string, ok bool, err error)
}

// PIN session states.
type pinState int

const (
	pinIdle pinState = iota
	pinAwaiting
)

// PINResult classifies the outcome of one submitted PIN.
type PINResult int

const (
	// PINGranted: the PIN matched an active identity; a success decision
	// was emitted and the session ended.
	PINGranted PINResult = iota
	// PINRetry: wrong PIN, attempts remain, session continues.
	PINRetry
	// PINLocked: the attempt limit was reached; a single failure decision
	// was emitted and the session ended.
	PINLocked
	// PINCancelled: empty input ended the session with no decision.
	PINCancelled
)

// PINOutcome is the result of SubmitPIN.
type PINOutcome struct {
	Result       PINResult
	UserName     string // set when Result == PINGranted
	AttemptsLeft int    // meaningful when Result == PINRetry
}

const (
	// DefaultCooldown is the minimum interval between repeated grant
	// notifications for the same identity.
	DefaultCooldown = 30 * time.Second

	// DefaultMaxPINAttempts is the number of wrong PINs tolerated per
	// session before the lockout decision is emitted.
	DefaultMaxPINAttempts = 3
)

// Decider turns raw face matches and PIN submissions into access decisions.
// It owns the per-identity notification cooldown and the per-session PIN
// attempt counter.  All of its state is transient: a restart resets both.
type Decider struct {
	sink        DecisionSink
	pins        PINValidator
	cooldown    time.Duration
	maxAttempts int
	now         func() time.Time

	mu           sync.Mutex
	lastNotified map[string]time.Time
	state        pinState
	attempts     int
}

type DeciderConfig struct {
	Cooldown       time.Duration // 0 = DefaultCooldown
	MaxPINAttempts int           // 0 = DefaultMaxPINAttempts
	Now            func() time.Time
}

func NewDecider(sink DecisionSink, pins PINValidator, cfg DeciderConfig) *Decider {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	maxAttempts := cfg.MaxPINAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPINAttempts
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Decider{
		sink:         sink,
		pins:         pins,
		cooldown:     cooldown,
		maxAttempts:  maxAttempts,
		now:          now,
		lastNotified: make(map[string]time.Time),
	}
}

// ObserveFace handles one recognized face in a frame.  Unrecognized faces
// never reach here — the match step already filtered them — but an empty
// name is tolerated and ignored.
//
// A decision is emitted only when the cooldown window for that identity has
// elapsed; within the window the observation is suppressed silently.  The
// cooldown timestamp advances even if the sink fails, so a flaky
// coordinator link cannot turn a continuously visible face into a notify
// storm.  The sink error is returned for logging.
func (d *Decider) ObserveFace(ctx context.Context, name string, confidence float64) (bool, error) {
	if name == "" {
		return false, nil
	}

	d.mu.Lock()
	if last, ok := d.lastNotified[name]; ok && d.now().Sub(last) <= d.cooldown {
		d.mu.Unlock()
		return false, nil
	}
	d.lastNotified[name] = d.now()
	d.mu.Unlock()

	err := d.sink.Notify(ctx, Decision{
		UserName:   name,
		Method:     types.MethodFace,
		Success:    true,
		Confidence: confidence,
	})
	return true, err
}

// StartPIN opens a PIN entry session.  Only one session may be active per
// node.
func (d *Decider) StartPIN() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != pinIdle {
		return ErrPINSessionActive
	}
	d.state = pinAwaiting
	d.attempts = 0
	return nil
}

// SubmitPIN processes one PIN entry within an active session.
//
// Empty input cancels the session (no decision).  A correct PIN emits an
// immediate success decision — the cooldown does not apply to the PIN path —
// and ends the session.  A wrong PIN consumes an attempt; on the last
// attempt a single lockout decision is emitted for the unknown user with
// confidence 0, and the session ends with the counter reset.
func (d *Decider) SubmitPIN(ctx context.Context, pin string) (PINOutcome, error) {
	d.mu.Lock()
	if d.state != pinAwaiting {
		d.mu.Unlock()
		return PINOutcome{}, ErrNoPINSession
	}
	d.mu.Unlock()

	if pin == "" {
		d.endPINSession()
		return PINOutcome{Result: PINCancelled}, nil
	}

	name, ok, err := d.pins.LookupByPIN(ctx, pin)
	if err != nil {
		// Lookup failure does not consume an attempt; the store being
		// unavailable is not the user's fault.
		return PINOutcome{}, err
	}

	if ok {
		d.endPINSession()
		err := d.sink.Notify(ctx, Decision{
			UserName:   name,
			Method:     types.MethodPIN,
			Success:    true,
			Confidence: 1.0,
		})
		return PINOutcome{Result: PINGranted, UserName: name}, err
	}

	d.mu.Lock()
	d.attempts++
	locked := d.attempts >= d.maxAttempts
	left := d.maxAttempts - d.attempts
	if locked {
		d.state = pinIdle
		d.attempts = 0
	}
	d.mu.Unlock()

	if !locked {
		return PINOutcome{Result: PINRetry, AttemptsLeft: left}, nil
	}

	err = d.sink.Notify(ctx, Decision{
		UserName:   types.UnknownUser,
		Method:     types.MethodPINLockout,
		Success:    false,
		Confidence: 0,
	})
	return PINOutcome{Result: PINLocked}, err
}

// CancelPIN aborts an active session without emitting a decision.
func (d *Decider) CancelPIN() {
	d.endPINSession()
}

func (d *Decider) endPINSession() {
	d.mu.Lock()
	d.state = pinIdle
	d.attempts = 0
	d.mu.Unlock()
}
