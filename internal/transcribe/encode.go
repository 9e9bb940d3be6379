package transcribe

import (
	"encoding/base64"
	"fmt"
	"mime"

	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/recorder"
)

// Encode turns an artifact into its inline transport form.
func Encode(artifact recorder.Artifact) (InlineAudio, error) {
	if len(artifact.Data) == 0 {
		return InlineAudio{}, failure.New(failure.EncodingError, "audio artifact is empty")
	}
	if artifact.MIMEType == "" {
		return InlineAudio{}, failure.New(failure.EncodingError, "audio artifact has no MIME type")
	}
	if _, _, err := mime.ParseMediaType(artifact.MIMEType); err != nil {
		return InlineAudio{}, &failure.Error{
			Kind:    failure.EncodingError,
			Message: fmt.Sprintf("invalid audio MIME type %q", artifact.MIMEType),
			Err:     err,
		}
	}

	return InlineAudio{
		MIMEType: artifact.MIMEType,
		Data:     base64.StdEncoding.EncodeToString(artifact.Data),
	}, nil
}

// Decode reverses the transport encoding for backends that send raw bytes.
func (a InlineAudio) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode inline audio: %w", err)
	}
	return data, nil
}
