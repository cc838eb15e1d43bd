package contact

import (
	"context"
	"sync"
	"time"

	"github.com/DukeRupert/contactform/internal/domain"
	"github.com/DukeRupert/contactform/internal/metrics"
)

// DefaultSuccessDisplay is how long Succeeded is shown before the form
// returns to Idle.
const DefaultSuccessDisplay = 4 * time.Second

// FormOptions configures a form instance.
type FormOptions struct {
	Orchestrator   *Orchestrator
	Config         *DeliveryConfig // nil disables submission
	SuccessDisplay time.Duration
}

// Form is one contact form instance: its draft fields, its submission state
// and the in-flight guard that keeps a second submit from starting while the
// first is outstanding.
type Form struct {
	id             string
	orchestrator   *Orchestrator
	config         *DeliveryConfig
	successDisplay time.Duration

	mu         sync.Mutex
	state      State
	fields     FormPayload
	resetTimer *time.Timer
	generation uint64 // bumped on every transition; stale timers compare against it
	lastActive time.Time
}

// NewForm creates an Idle form instance.
func NewForm(id string, opts FormOptions) *Form {
	if opts.SuccessDisplay <= 0 {
		opts.SuccessDisplay = DefaultSuccessDisplay
	}
	return &Form{
		id:             id,
		orchestrator:   opts.Orchestrator,
		config:         opts.Config,
		successDisplay: opts.SuccessDisplay,
		state:          State{Phase: Idle},
		lastActive:     time.Now(),
	}
}

// ID returns the instance identifier.
func (f *Form) ID() string {
	return f.id
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fields returns the current draft: the last submitted values after a
// failure, empty after a success.
func (f *Form) Fields() FormPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Submit runs one submission for payload.
//
// While a submission is in flight the call is a no-op returning a conflict
// error. A missing delivery configuration returns a config error without
// leaving the current state. Otherwise the form passes through Sending and
// ends in Succeeded (fields cleared, auto reset to Idle after the success
// display) or Failed (fields kept for another try).
func (f *Form) Submit(ctx context.Context, payload FormPayload) (State, error) {
	f.mu.Lock()
	f.lastActive = time.Now()

	if f.state.Phase == Sending {
		st := f.state
		f.mu.Unlock()
		metrics.SubmissionFinished(f.orchestrator.Policy().String(), metrics.ResultInFlight)
		return st, domain.Conflict(opSubmit, domain.MsgInFlight)
	}

	f.fields = payload

	if err := f.orchestrator.Ready(f.config); err != nil {
		st := f.state
		f.mu.Unlock()
		return st, err
	}

	if err := f.transitionLocked(evSubmit, ""); err != nil {
		st := f.state
		f.mu.Unlock()
		return st, domain.Internal(err, opSubmit, "submission could not start")
	}
	f.mu.Unlock()

	err := f.orchestrator.Submit(ctx, payload, f.config)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActive = time.Now()

	if err != nil {
		_ = f.transitionLocked(evFailure, domain.ErrorMessage(err))
		return f.state, err
	}

	f.fields = FormPayload{}
	_ = f.transitionLocked(evSuccess, "")
	f.scheduleResetLocked()
	return f.state, nil
}

// transitionLocked applies ev. Callers hold f.mu.
func (f *Form) transitionLocked(ev event, reason string) error {
	to, err := next(f.state.Phase, ev)
	if err != nil {
		return err
	}
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	f.generation++
	f.state = State{Phase: to, Reason: reason}
	return nil
}

func (f *Form) scheduleResetLocked() {
	gen := f.generation
	f.resetTimer = time.AfterFunc(f.successDisplay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.generation != gen {
			return
		}
		_ = f.transitionLocked(evTimeout, "")
	})
}

// idleSince reports whether the form can be evicted: not sending and
// untouched since cutoff.
func (f *Form) idleSince(cutoff time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Phase != Sending && f.lastActive.Before(cutoff)
}

// Close stops the pending auto reset, if any.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
}
