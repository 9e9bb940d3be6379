package indicator

import (
	"os"
	"strings"
)

// messages holds the notice text for one locale.
type messages struct {
	recording        string
	transcribing     string
	noSpeech         string
	startFailed      string
	transcribeFailed string
	commitFailed     string
}

var (
	english = messages{
		recording:        "Recording…",
		transcribing:     "Transcribing…",
		noSpeech:         "No speech detected",
		startFailed:      "Unable to start recording",
		transcribeFailed: "Speech recognition failed",
		commitFailed:     "Could not copy the transcript",
	}
	japanese = messages{
		recording:        "録音中…",
		transcribing:     "文字起こし中…",
		noSpeech:         "音声が検出されませんでした",
		startFailed:      "録音を開始できません",
		transcribeFailed: "音声認識に失敗しました",
		commitFailed:     "文字起こし結果をコピーできません",
	}
)

// messagesFromEnv follows POSIX precedence: the first non-empty of LC_ALL,
// LC_MESSAGES, and LANG decides.
func messagesFromEnv() messages {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return messagesFor(value)
		}
	}
	return english
}

func messagesFor(locale string) messages {
	if strings.HasPrefix(strings.ToLower(locale), "ja") {
		return japanese
	}
	return english
}
