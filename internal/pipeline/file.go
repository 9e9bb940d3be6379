package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/recorder"
)

// videoContainers are sniffed as video/* but routinely carry audio only.
var videoContainers = map[string]string{
	"video/webm": "audio/webm",
	"video/mp4":  "audio/mp4",
	"video/ogg":  "audio/ogg",
}

// LoadArtifact reads an audio file and tags it with its sniffed container.
func LoadArtifact(path string) (recorder.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recorder.Artifact{}, fmt.Errorf("read audio file %q: %w", path, err)
	}

	mimeType, err := sniffContainer(data)
	if err != nil {
		return recorder.Artifact{}, fmt.Errorf("%s: %w", path, err)
	}
	return recorder.Artifact{Data: data, MIMEType: mimeType}, nil
}

func sniffContainer(data []byte) (string, error) {
	if len(data) == 0 {
		return "", failure.New(failure.EncodingError, "audio file is empty")
	}

	detected := mimetype.Detect(data)
	base, _, _ := strings.Cut(detected.String(), ";")
	base = strings.TrimSpace(base)
	if audioType, ok := videoContainers[base]; ok {
		return audioType, nil
	}
	for mtype := detected; mtype != nil; mtype = mtype.Parent() {
		if strings.HasPrefix(mtype.String(), "audio/") {
			return mtype.String(), nil
		}
	}
	return "", failure.New(failure.EncodingError, fmt.Sprintf("unsupported audio container %q", base))
}
