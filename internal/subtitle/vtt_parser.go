package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mgpai22/captioner/internal/caption"
)

// hours are optional in WebVTT cue timings
var vttTimingRegex = regexp.MustCompile(
	`(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})`,
)

type VTTParser struct{}

func (VTTParser) Parse(r io.Reader) ([]caption.Caption, error) {
	var (
		captions  []caption.Caption
		current   *caption.Caption
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			captions = append(captions, *current)
		}
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if !strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				return nil, fmt.Errorf("missing WEBVTT header")
			}
			continue
		}

		trimmed := strings.TrimSpace(line)

		// NOTE, STYLE and REGION blocks run to the next blank line
		if current == nil && (strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") ||
			strings.HasPrefix(trimmed, "REGION")) {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := vttTimingRegex.FindStringSubmatch(line); m != nil {
			flush()
			start, err := clockSeconds(m[1], m[2], m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := clockSeconds(m[5], m[6], m[7], m[8])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &caption.Caption{StartTime: start, EndTime: end}
			continue
		}

		// cue identifiers precede the timing line and are dropped
		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}
	return captions, nil
}
