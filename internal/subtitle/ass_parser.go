package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/captioner/internal/caption"
)

var (
	assTagRegex  = regexp.MustCompile(`\{[^}]*\}`)
	assTimeRegex = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)
)

// reads Dialogue lines from the [Events] section. Override tags are
// stripped; styling does not survive import.
type ASSParser struct{}

func (ASSParser) Parse(r io.Reader) ([]caption.Caption, error) {
	var (
		captions []caption.Caption
		inEvents bool
		columns  []string
		startCol = -1
		endCol   = -1
		textCol  = -1
		lineNum  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[events]")
			continue
		}
		if !inEvents {
			continue
		}

		if rest, ok := cutPrefixFold(trimmed, "Format:"); ok {
			columns = strings.Split(rest, ",")
			for i, col := range columns {
				switch strings.ToLower(strings.TrimSpace(col)) {
				case "start":
					startCol = i
				case "end":
					endCol = i
				case "text":
					textCol = i
				}
			}
			continue
		}

		rest, ok := cutPrefixFold(trimmed, "Dialogue:")
		if !ok {
			continue
		}
		if startCol < 0 || endCol < 0 || textCol < 0 {
			return nil, fmt.Errorf("dialogue before a usable Format line at line %d", lineNum)
		}

		// the text column is last and may itself contain commas
		fields := strings.SplitN(rest, ",", len(columns))
		if len(fields) <= textCol {
			return nil, fmt.Errorf("short dialogue at line %d", lineNum)
		}
		start, err := parseASSTimestamp(fields[startCol])
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
		}
		end, err := parseASSTimestamp(fields[endCol])
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
		}

		text := assTagRegex.ReplaceAllString(fields[textCol], "")
		text = strings.ReplaceAll(text, "\\N", "\n")
		text = strings.ReplaceAll(text, "\\n", "\n")
		text = strings.ReplaceAll(text, "\\h", " ")
		if strings.TrimSpace(text) == "" {
			continue
		}
		captions = append(captions, caption.Caption{Text: text, StartTime: start, EndTime: end})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS: %w", err)
	}
	return captions, nil
}

func parseASSTimestamp(ts string) (float64, error) {
	m := assTimeRegex.FindStringSubmatch(strings.TrimSpace(ts))
	if m == nil {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4])
	return float64(h*3600+mm*60+s) + float64(cs)/100, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}
