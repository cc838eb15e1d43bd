package contact

import "fmt"

// Phase is the coarse submission state of a form instance.
type Phase int

const (
	Idle Phase = iota
	Sending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText lets Phase render as its name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is what the presentation layer renders. Reason is set only in
// Failed and is always a visitor-safe message.
type State struct {
	Phase  Phase  `json:"state"`
	Reason string `json:"message,omitempty"`
}

// event drives a transition.
type event string

const (
	evSubmit  event = "submit"
	evSuccess event = "success"
	evFailure event = "failure"
	evTimeout event = "timeout"
)

// transitions is the full table; anything absent is rejected.
var transitions = map[Phase]map[event]Phase{
	Idle:      {evSubmit: Sending},
	Sending:   {evSuccess: Succeeded, evFailure: Failed},
	Succeeded: {evSubmit: Sending, evTimeout: Idle},
	Failed:    {evSubmit: Sending},
}

// ErrNoTransition reports an event the current phase does not accept.
type ErrNoTransition struct {
	From  Phase
	Event string
}

func (e *ErrNoTransition) Error() string {
	return fmt.Sprintf("no transition from %s on %s", e.From, e.Event)
}

func next(from Phase, ev event) (Phase, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, &ErrNoTransition{From: from, Event: string(ev)}
}
