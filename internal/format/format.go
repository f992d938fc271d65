// Package format projects messages into display strings. Every method
// returns a value plus an ok flag; a false flag means the field is
// unavailable and should render empty, never as an error.
package format

import (
	"strings"
	"time"

	"github.com/adamavenir/skein/internal/types"
	"github.com/dustin/go-humanize"
)

const defaultPreviewWidth = 120

// Formatter renders message previews for list rows.
type Formatter struct {
	previewWidth int
}

// New returns a formatter. A non-positive width selects the default
// preview width.
func New(width int) *Formatter {
	if width <= 0 {
		width = defaultPreviewWidth
	}
	return &Formatter{previewWidth: width}
}

// Format returns a single-line preview of the message body. Code fences
// collapse to a [code] placeholder and whitespace runs collapse to single
// spaces. An absent or blank body is unavailable.
func (f *Formatter) Format(msg *types.Message, members map[string]string) (string, bool) {
	if msg == nil {
		return "", false
	}
	body := collapseFences(msg.Body)
	compact := strings.Join(strings.Fields(body), " ")
	if compact == "" {
		return "", false
	}
	if len(compact) > f.previewWidth {
		compact = compact[:f.previewWidth-3] + "..."
	}
	return compact, true
}

// FormatTime returns a relative display time for a unix timestamp. A
// non-positive timestamp is unavailable.
func (f *Formatter) FormatTime(ts int64) (string, bool) {
	if ts <= 0 {
		return "", false
	}
	return humanize.Time(time.Unix(ts, 0)), true
}

// DisplayName resolves a sender to its member display name, falling back
// to the raw username.
func (f *Formatter) DisplayName(sender string, members map[string]string) string {
	if sender == "" {
		return ""
	}
	if name, ok := members[sender]; ok && name != "" {
		return name
	}
	return sender
}

// collapseFences replaces fenced code blocks with a [code] placeholder.
// An unclosed fence swallows the remainder of the body.
func collapseFences(body string) string {
	if !strings.Contains(body, "```") && !strings.Contains(body, "~~~") {
		return body
	}

	lines := strings.Split(body, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		fence, ok := parseFence(lines[i])
		if !ok {
			out = append(out, lines[i])
			continue
		}
		out = append(out, "[code]")
		end := findClosingFence(lines, i+1, fence)
		if end == -1 {
			break
		}
		i = end
	}
	return strings.Join(out, "\n")
}

func parseFence(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return "", false
	}
	fenceChar := trimmed[0]
	if fenceChar != '`' && fenceChar != '~' {
		return "", false
	}
	count := 0
	for count < len(trimmed) && trimmed[count] == fenceChar {
		count++
	}
	if count < 3 {
		return "", false
	}
	return trimmed[:count], true
}

func findClosingFence(lines []string, start int, fence string) int {
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if len(trimmed) < len(fence) {
			continue
		}
		closes := true
		for j := 0; j < len(trimmed); j++ {
			if trimmed[j] != fence[0] {
				closes = false
				break
			}
		}
		if closes {
			return i
		}
	}
	return -1
}
