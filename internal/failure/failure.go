// Package failure defines the user-facing error taxonomy shared by capture and transcription.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for display and recovery decisions.
type Kind string

const (
	// DeviceUnavailable means no microphone exists or access was denied.
	DeviceUnavailable Kind = "device_unavailable"
	// MissingCredential means transcription was requested without a credential.
	MissingCredential Kind = "missing_credential"
	// EncodingError means the audio artifact could not be prepared for transport.
	EncodingError Kind = "encoding_error"
	// BackendError means the transcription backend or network failed.
	BackendError Kind = "backend_error"
)

// Error is a classified failure with a message suitable for the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified failure with a fixed message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err, keeping its message verbatim for display.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// KindOf returns the failure kind carried by err, or "" when unclassified.
func KindOf(err error) Kind {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr.Kind
	}
	return ""
}

// Is reports whether err carries the given failure kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
