// Package fsm is the display state machine for one dictation attempt.
package fsm

import "fmt"

// State is what the user sees for the current attempt.
type State string

// Event is something that happened to the attempt.
type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateSuccess      State = "success"
	StateError        State = "error"
)

const (
	EventStart       Event = "start"
	EventStop        Event = "stop"
	EventCancel      Event = "cancel"
	EventTranscribed Event = "transcribed"
	EventFail        Event = "fail"
	EventReset       Event = "reset"
)

// edges lists every allowed move except EventFail, which any known state
// accepts. Success and Error both allow a fresh attempt.
var edges = map[State]map[Event]State{
	StateIdle:         {EventStart: StateRecording},
	StateRecording:    {EventStop: StateTranscribing, EventCancel: StateIdle},
	StateTranscribing: {EventTranscribed: StateSuccess},
	StateSuccess:      {EventStart: StateRecording, EventReset: StateIdle},
	StateError:        {EventStart: StateRecording, EventReset: StateIdle},
}

// Transition returns the state reached by applying event to current. On
// error current is returned unchanged.
func Transition(current State, event Event) (State, error) {
	moves, ok := edges[current]
	if !ok {
		return current, fmt.Errorf("unknown state %q", current)
	}
	if event == EventFail {
		return StateError, nil
	}
	if next, ok := moves[event]; ok {
		return next, nil
	}
	return current, fmt.Errorf("invalid transition: %q is not accepted while %s", event, current)
}

// Terminal reports whether state ends an attempt.
func Terminal(state State) bool {
	return state == StateSuccess || state == StateError
}
