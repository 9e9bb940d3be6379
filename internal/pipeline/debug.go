package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rbright/kikitori/internal/logging"
	"github.com/rbright/kikitori/internal/recorder"
)

// writeDebugArtifact keeps a copy of the take when debug.audio_dump is on.
// A failed dump is logged and never fails the dictation.
func (t *Transcriber) writeDebugArtifact(artifact recorder.Artifact) {
	if !t.cfg.Debug.EnableAudioDump || len(artifact.Data) == 0 {
		return
	}
	if _, err := dumpArtifact(artifact, time.Now()); err != nil {
		t.logWarn("unable to write debug audio dump", "error", err.Error())
	}
}

// dumpArtifact writes artifact to <state>/debug/audio-<stamp>.<ext> with
// owner-only permissions and returns the path.
func dumpArtifact(artifact recorder.Artifact, at time.Time) (string, error) {
	state, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(state, "debug")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}

	name := fmt.Sprintf("audio-%s.%s", at.Format("20060102-150405.000"), extensionFor(artifact.MIMEType))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, artifact.Data, 0o600); err != nil {
		return "", fmt.Errorf("write debug dump %q: %w", path, err)
	}
	return path, nil
}

// extensionFor maps a container tag, parameters included, to a file extension.
func extensionFor(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	if mtype := mimetype.Lookup(strings.TrimSpace(base)); mtype != nil && mtype.Extension() != "" {
		return strings.TrimPrefix(mtype.Extension(), ".")
	}
	return "bin"
}
