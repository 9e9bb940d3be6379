// Package session runs one dictation attempt at a time: record until asked to
// stop, transcribe the finished artifact, and commit the text.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/fsm"
	"github.com/rbright/kikitori/internal/ipc"
	"github.com/rbright/kikitori/internal/recorder"
)

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

func (a action) String() string {
	switch a {
	case actionStop:
		return "stop"
	case actionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Stage names the step of an attempt that failed.
type Stage string

const (
	StageStart      Stage = "start"
	StageTranscribe Stage = "transcribe"
	StageCommit     Stage = "commit"
)

// Result describes how one attempt ended.
type Result struct {
	State          fsm.State
	Transcript     string
	Cancelled      bool
	Err            error
	FailureKind    failure.Kind
	FailedStage    Stage
	AudioDevice    string
	MIMEType       string
	BytesCaptured  int64
	ElapsedSeconds int
	BackendLatency time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
	FocusedMonitor string
}

func (r *Result) absorb(stop StopResult) {
	r.Transcript = stop.Transcript
	r.AudioDevice = stop.AudioDevice
	r.MIMEType = stop.MIMEType
	r.BytesCaptured = stop.BytesCaptured
	r.ElapsedSeconds = stop.ElapsedSeconds
	r.BackendLatency = stop.BackendLatency
}

// Indicator receives the attempt's lifecycle so the user can follow it.
type Indicator interface {
	Recording(context.Context)
	Transcribing(context.Context)
	Committed(context.Context)
	Cancelled(context.Context)
	Failed(context.Context, Stage, error)
	Hide(context.Context)
	FocusedMonitor() string
}

type silentIndicator struct{}

func (silentIndicator) Recording(context.Context)            {}
func (silentIndicator) Transcribing(context.Context)         {}
func (silentIndicator) Committed(context.Context)            {}
func (silentIndicator) Cancelled(context.Context)            {}
func (silentIndicator) Failed(context.Context, Stage, error) {}
func (silentIndicator) Hide(context.Context)                 {}
func (silentIndicator) FocusedMonitor() string               { return "" }

// Controller owns the attempt state and serves IPC requests against it.
type Controller struct {
	logger     *slog.Logger
	transcribe Transcriber
	commit     Committer
	indicator  Indicator

	mu    sync.RWMutex
	state fsm.State

	actions chan action
}

// NewController builds a controller. A nil transcriber makes every attempt
// fail at start; a nil committer drops transcripts; a nil indicator is silent.
func NewController(logger *slog.Logger, transcriber Transcriber, committer Committer, indicator Indicator) *Controller {
	if transcriber == nil {
		transcriber = unwired{}
	}
	if committer == nil {
		committer = CommitFunc(func(context.Context, string) error { return nil })
	}
	if indicator == nil {
		indicator = silentIndicator{}
	}
	return &Controller{
		logger:     logger,
		transcribe: transcriber,
		commit:     committer,
		indicator:  indicator,
		state:      fsm.StateIdle,
		actions:    make(chan action, 1),
	}
}

// State returns the current display state.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Run records until a stop or cancel arrives, then finishes the attempt.
// Cancelling ctx while recording discards the audio.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}
	if err := c.advance(fsm.EventStart); err != nil {
		return c.finish(result, err)
	}

	c.indicator.Recording(ctx)
	if err := c.transcribe.Start(ctx); err != nil {
		return c.failAt(result, StageStart, err)
	}
	defer c.hide()

	next, err := c.await(ctx)
	if err != nil {
		c.discard()
		return c.fail(result, err)
	}

	switch next {
	case actionStop:
		return c.stop(ctx, result)
	case actionCancel:
		c.discard()
		_ = c.advance(fsm.EventCancel)
		result.Cancelled = true
		return c.finish(result, nil)
	default:
		return c.fail(result, fmt.Errorf("unknown action %d", next))
	}
}

func (c *Controller) await(ctx context.Context) (action, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case next := <-c.actions:
		return next, nil
	}
}

func (c *Controller) stop(ctx context.Context, result Result) Result {
	if err := c.advance(fsm.EventStop); err != nil {
		return c.fail(result, err)
	}
	c.indicator.Transcribing(ctx)

	out, err := c.transcribe.StopAndTranscribe(ctx)
	result.absorb(out)
	if err != nil {
		return c.failAt(result, StageTranscribe, err)
	}
	if strings.TrimSpace(out.Transcript) == "" {
		return c.failAt(result, StageTranscribe, ErrEmptyTranscript)
	}

	if err := c.commit.Commit(ctx, out.Transcript); err != nil {
		return c.failAt(result, StageCommit, err)
	}
	c.indicator.Committed(context.Background())

	return c.finish(result, c.advance(fsm.EventTranscribed))
}

// discard drops the recording without transcribing it.
func (c *Controller) discard() {
	if err := c.transcribe.Cancel(context.Background()); err != nil && c.logger != nil {
		c.logger.Warn("discard recording failed", "error", err.Error())
	}
	c.indicator.Cancelled(context.Background())
}

func (c *Controller) hide() {
	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	c.indicator.Hide(ctx)
}

// Handle answers IPC requests from other kikitori invocations.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		state := c.State()
		resp := ipc.Response{OK: true, State: string(state), Message: "status"}
		if state == fsm.StateRecording {
			resp.Elapsed = recorder.FormatElapsed(c.transcribe.Elapsed())
		}
		return resp
	case ipc.CommandToggle:
		return c.request(actionStop, "toggle")
	case ipc.CommandStop:
		return c.request(actionStop, "stop")
	case ipc.CommandCancel:
		return c.request(actionCancel, "cancel")
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// request queues act for Run. Only a recording attempt accepts actions; one
// in flight at a time, so repeats are acknowledged without queueing.
func (c *Controller) request(act action, verb string) ipc.Response {
	state := c.State()
	switch state {
	case fsm.StateRecording:
	case fsm.StateTranscribing:
		reason := "already transcribing"
		if act == actionCancel {
			reason = "cannot cancel while transcribing"
		}
		return ipc.Response{OK: false, State: string(state), Error: reason}
	default:
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot %s from state %s", verb, state)}
	}

	select {
	case c.actions <- act:
		return ipc.Response{OK: true, State: string(state), Message: act.String() + " requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: act.String() + " already requested"}
	}
}

func (c *Controller) advance(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("session state", "event", string(event), "state", string(next))
	}
	return nil
}

// failAt reports err to the user and ends the attempt in the error state.
// Device failures were already reported by the recorder.
func (c *Controller) failAt(result Result, stage Stage, err error) Result {
	if !failure.Is(err, failure.DeviceUnavailable) {
		c.indicator.Failed(context.Background(), stage, err)
	}
	result.FailedStage = stage
	return c.fail(result, err)
}

func (c *Controller) fail(result Result, err error) Result {
	_ = c.advance(fsm.EventFail)
	return c.finish(result, err)
}

func (c *Controller) finish(result Result, err error) Result {
	result.State = c.State()
	result.Err = err
	result.FailureKind = failure.KindOf(err)
	result.FinishedAt = time.Now()
	result.FocusedMonitor = c.indicator.FocusedMonitor()
	return result
}
