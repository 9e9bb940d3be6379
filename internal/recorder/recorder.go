// Package recorder owns the microphone capture lifecycle for one session at a time.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/kikitori/internal/failure"
)

var (
	// ErrBusy indicates a session is already requesting, recording, or stopping.
	ErrBusy = errors.New("recording session already active")
	// ErrNotRecording indicates stop/cancel was requested with no active recording.
	ErrNotRecording = errors.New("not recording")
	// ErrClosed indicates the recorder was torn down.
	ErrClosed = errors.New("recorder closed")
)

const deviceNotice = "Could not access microphone. Please ensure permissions are granted."

// Option customizes a Recorder.
type Option func(*Recorder)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithNotifier sets the sink for user-facing capture notices.
func WithNotifier(notifier Notifier) Option {
	return func(r *Recorder) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// WithPreferences overrides the container preference order.
func WithPreferences(preferences []string) Option {
	return func(r *Recorder) {
		if len(preferences) > 0 {
			r.preferences = append([]string(nil), preferences...)
		}
	}
}

// WithTickInterval overrides the elapsed-counter period.
func WithTickInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithStateObserver registers a callback invoked after every state change.
func WithStateObserver(fn func(State)) Option {
	return func(r *Recorder) { r.onState = fn }
}

// Recorder drives a Platform through the Idle → Requesting → Recording →
// Stopping → Completed lifecycle. Failed is reachable on device or
// finalization errors. Both terminal states fall back to Idle once the
// artifact is handed off or the failure is reported.
type Recorder struct {
	platform    Platform
	logger      *slog.Logger
	notifier    Notifier
	preferences []string
	tick        time.Duration
	onState     func(State)

	mu       sync.Mutex
	state    State
	elapsed  int
	mimeType string
	device   string
	active   *capture
	closed   bool
}

// New constructs an idle recorder over platform.
func New(platform Platform, opts ...Option) *Recorder {
	r := &Recorder{
		platform:    platform,
		notifier:    noopNotifier{},
		preferences: DefaultPreferences,
		tick:        time.Second,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed returns whole seconds recorded in the current or last session.
func (r *Recorder) Elapsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

// MIMEType returns the container negotiated for the current or last session.
func (r *Recorder) MIMEType() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mimeType
}

// DeviceName returns the input device used by the current or last session.
func (r *Recorder) DeviceName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.device
}

// Start acquires the microphone and begins accumulating encoded audio.
//
// A second Start while a session is active returns ErrBusy without touching
// the platform. Device failures pass through StateFailed back to StateIdle and
// return a failure.DeviceUnavailable error.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.state.active() {
		r.mu.Unlock()
		return ErrBusy
	}
	if err := r.moveLocked(StateRequesting); err != nil {
		r.mu.Unlock()
		return err
	}
	r.elapsed = 0
	r.mimeType = ""
	r.device = ""
	r.mu.Unlock()
	r.emit(StateRequesting)

	device, err := r.platform.Acquire(ctx)
	if err != nil {
		return r.failStart(ctx, err)
	}

	mimeType := Negotiate(r.preferences, r.platform.Supports)
	encoder, err := device.Encode(mimeType)
	if err != nil {
		if releaseErr := device.Release(); releaseErr != nil {
			r.logWarn("release device after encoder failure", releaseErr)
		}
		return r.failStart(ctx, fmt.Errorf("start %s encoder: %w", mimeType, err))
	}

	c := newCapture(device, encoder)
	go c.collect()

	r.mu.Lock()
	if r.closed {
		_ = r.moveLocked(StateIdle)
		r.mu.Unlock()
		c.abort(r.logger)
		r.emit(StateIdle)
		return ErrClosed
	}
	_ = r.moveLocked(StateRecording)
	r.active = c
	r.mimeType = mimeType
	r.device = device.Name()
	r.mu.Unlock()

	go r.tickLoop(c)

	r.logInfo("recording started", "session_id", c.id, "device", device.Name(), "mime_type", mimeType)
	r.emit(StateRecording)
	return nil
}

// Stop finalizes the active session and returns its single artifact.
//
// Outside StateRecording it is a no-op returning ErrNotRecording. The device
// is released on every path, including finalization errors.
func (r *Recorder) Stop(ctx context.Context) (Artifact, error) {
	r.mu.Lock()
	c := r.active
	if r.state != StateRecording || c == nil {
		r.mu.Unlock()
		return Artifact{}, ErrNotRecording
	}
	_ = r.moveLocked(StateStopping)
	requested := r.mimeType
	r.mu.Unlock()
	r.emit(StateStopping)

	defer c.releaseDevice(r.logger)
	c.stopTicker()

	finishErr := c.encoder.Finish(ctx)
	<-c.collected

	data := c.drain()
	mimeType := c.encoder.MIMEType()
	if mimeType == "" {
		mimeType = requested
	}

	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	if finishErr != nil {
		r.settle(StateFailed)
	} else {
		r.settle(StateCompleted)
	}

	if finishErr != nil {
		r.logWarn("finalize recording failed", finishErr, "session_id", c.id)
		return Artifact{}, &failure.Error{
			Kind:    failure.EncodingError,
			Message: fmt.Sprintf("finalize recording: %v", finishErr),
			Err:     finishErr,
		}
	}

	r.logInfo("recording completed", "session_id", c.id, "mime_type", mimeType, "bytes", len(data))
	return Artifact{Data: data, MIMEType: mimeType}, nil
}

// Cancel discards the active recording and returns to StateIdle.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	c := r.active
	if r.state != StateRecording || c == nil {
		r.mu.Unlock()
		return ErrNotRecording
	}
	r.active = nil
	_ = r.moveLocked(StateIdle)
	r.mu.Unlock()

	c.abort(r.logger)
	r.logInfo("recording cancelled", "session_id", c.id)
	r.emit(StateIdle)
	return nil
}

// Close tears the recorder down, releasing any held device.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	if err := r.Cancel(); err != nil && !errors.Is(err, ErrNotRecording) {
		return err
	}
	return nil
}

func (r *Recorder) failStart(ctx context.Context, cause error) error {
	r.settle(StateFailed)

	r.logWarn("microphone unavailable", cause)
	r.notifier.DeviceFailed(ctx, &failure.Error{Kind: failure.DeviceUnavailable, Message: deviceNotice, Err: cause})
	return failure.Wrap(failure.DeviceUnavailable, cause)
}

// tickLoop advances the elapsed counter while c is the recording session.
func (r *Recorder) tickLoop(c *capture) {
	defer close(c.tickDone)
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopTick:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.state == StateRecording && r.active == c {
				r.elapsed++
			}
			r.mu.Unlock()
		}
	}
}

// settle reports the terminal state of a session and returns to StateIdle.
func (r *Recorder) settle(terminal State) {
	r.mu.Lock()
	_ = r.moveLocked(terminal)
	r.mu.Unlock()
	r.emit(terminal)

	r.mu.Lock()
	_ = r.moveLocked(StateIdle)
	r.mu.Unlock()
	r.emit(StateIdle)
}

func (r *Recorder) moveLocked(next State) error {
	state, err := Advance(r.state, next)
	if err != nil {
		return err
	}
	r.state = state
	return nil
}

func (r *Recorder) emit(state State) {
	if r.onState != nil {
		r.onState(state)
	}
}

func (r *Recorder) logInfo(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Info(msg, args...)
}

func (r *Recorder) logWarn(msg string, err error, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(msg, append(args, "error", err.Error())...)
}

// capture is the per-session state: device, encoder, and accumulated fragments.
type capture struct {
	id      string
	device  Device
	encoder Encoder

	mu     sync.Mutex
	chunks [][]byte

	collected chan struct{}
	stopTick  chan struct{}
	tickDone  chan struct{}
	stopOnce  sync.Once
	release   sync.Once
}

func newCapture(device Device, encoder Encoder) *capture {
	return &capture{
		id:        uuid.NewString(),
		device:    device,
		encoder:   encoder,
		collected: make(chan struct{}),
		stopTick:  make(chan struct{}),
		tickDone:  make(chan struct{}),
	}
}

// collect appends non-empty fragments until the encoder closes the stream.
func (c *capture) collect() {
	defer close(c.collected)
	for fragment := range c.encoder.Fragments() {
		if len(fragment) == 0 {
			continue
		}
		c.mu.Lock()
		c.chunks = append(c.chunks, fragment)
		c.mu.Unlock()
	}
}

// drain concatenates and forgets all collected fragments.
func (c *capture) drain() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := 0
	for _, chunk := range c.chunks {
		size += len(chunk)
	}
	data := make([]byte, 0, size)
	for _, chunk := range c.chunks {
		data = append(data, chunk...)
	}
	c.chunks = nil
	return data
}

func (c *capture) stopTicker() {
	c.stopOnce.Do(func() {
		close(c.stopTick)
	})
	<-c.tickDone
}

func (c *capture) releaseDevice(logger *slog.Logger) {
	c.release.Do(func() {
		if err := c.device.Release(); err != nil && logger != nil {
			logger.Warn("release audio device failed", "session_id", c.id, "error", err.Error())
		}
	})
}

// abort stops everything and drops collected audio.
func (c *capture) abort(logger *slog.Logger) {
	defer c.releaseDevice(logger)

	c.stopOnce.Do(func() {
		close(c.stopTick)
	})
	_ = c.encoder.Finish(context.Background())
	<-c.collected
	c.drain()
}
