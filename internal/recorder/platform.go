package recorder

import "context"

// Platform is the media-capture capability the Recorder drives.
type Platform interface {
	// Acquire requests exclusive access to one audio input device.
	Acquire(context.Context) (Device, error)
	// Supports reports whether the platform can encode the given container.
	Supports(mimeType string) bool
}

// Device is one exclusively held audio input.
type Device interface {
	Name() string
	// Encode starts capture into the requested container. The platform may
	// substitute its own default container; Encoder.MIMEType reports the one used.
	Encode(mimeType string) (Encoder, error)
	// Release frees the device. The Recorder calls it exactly once per session.
	Release() error
}

// Encoder delivers encoded fragments for one capture.
type Encoder interface {
	// Fragments yields encoded fragments in order. The channel is closed by
	// Finish, including when Finish fails.
	Fragments() <-chan []byte
	// MIMEType returns the container actually produced.
	MIMEType() string
	// Finish stops capture, flushes pending fragments, and closes Fragments.
	Finish(context.Context) error
}

// Artifact is the finalized audio of one completed recording session.
type Artifact struct {
	Data     []byte
	MIMEType string
}

// Notifier is told when the microphone cannot be opened. The error is a
// failure.DeviceUnavailable whose message is meant for the user.
type Notifier interface {
	DeviceFailed(context.Context, error)
}

type noopNotifier struct{}

func (noopNotifier) DeviceFailed(context.Context, error) {}
