package translate

import (
	"regexp"
	"strings"
)

var (
	parenDisclaimer   = regexp.MustCompile(`(?i)\(\s*(note|disclaimer)\s*:[^)]*\)`)
	bracketDisclaimer = regexp.MustCompile(`(?i)\[\s*(note|disclaimer)\s*:[^\]]*\]`)
	lineDisclaimer    = regexp.MustCompile(`(?i)^\s*(note|disclaimer)\s*:`)
)

// SanitizeAIText strips machine-translation disclaimers that models like to
// append and trims surrounding whitespace. Line breaks are kept.
func SanitizeAIText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = parenDisclaimer.ReplaceAllString(text, " ")
	text = bracketDisclaimer.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if lineDisclaimer.MatchString(line) {
			continue
		}
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
