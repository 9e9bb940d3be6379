package recorder

import "fmt"

// DefaultPreferences is the container preference order, most preferred first.
// The last entry is the terminal fallback when nothing is reported as supported.
var DefaultPreferences = []string{"audio/webm", "audio/mp4", "audio/wav"}

// Negotiate picks the first container the platform supports.
func Negotiate(preferences []string, supports func(string) bool) string {
	if len(preferences) == 0 {
		preferences = DefaultPreferences
	}
	if supports != nil {
		for _, mimeType := range preferences {
			if supports(mimeType) {
				return mimeType
			}
		}
	}
	return preferences[len(preferences)-1]
}

// FormatElapsed renders seconds as m:ss with unbounded minutes.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
