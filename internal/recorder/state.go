package recorder

import "fmt"

// State is the recording-session lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateRecording  State = "recording"
	StateStopping   State = "stopping"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateRequesting},
	StateRequesting: {StateRecording, StateFailed, StateIdle},
	StateRecording:  {StateStopping, StateFailed, StateIdle},
	StateStopping:   {StateCompleted, StateFailed},
	StateCompleted:  {StateIdle},
	StateFailed:     {StateIdle},
}

// Advance validates one lifecycle transition.
func Advance(current State, next State) (State, error) {
	allowed, ok := transitions[current]
	if !ok {
		return current, fmt.Errorf("unknown recorder state %q", current)
	}
	for _, candidate := range allowed {
		if candidate == next {
			return next, nil
		}
	}
	return current, fmt.Errorf("invalid recorder transition: %s -> %s", current, next)
}

// active reports whether a session currently holds or is acquiring the device.
func (s State) active() bool {
	return s == StateRequesting || s == StateRecording || s == StateStopping
}
