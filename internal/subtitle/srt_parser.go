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

var srtTimingRegex = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})`,
)

type SRTParser struct{}

func (SRTParser) Parse(r io.Reader) ([]caption.Caption, error) {
	var (
		captions  []caption.Caption
		current   *caption.Caption
		timed     bool
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && timed && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			captions = append(captions, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = &caption.Caption{}
				continue
			}
		}

		if current != nil && !timed {
			m := srtTimingRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("expected timing at line %d, got %q", lineNum, line)
			}
			start, err := clockSeconds(m[1], m[2], m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := clockSeconds(m[5], m[6], m[7], m[8])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current.StartTime, current.EndTime = start, end
			timed = true
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}
	return captions, nil
}

// seconds from clock fields; an empty hours field counts as zero
func clockSeconds(hours, minutes, seconds, millis string) (float64, error) {
	h := 0
	if hours != "" {
		v, err := strconv.Atoi(hours)
		if err != nil {
			return 0, err
		}
		h = v
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	if m > 59 || s > 59 {
		return 0, fmt.Errorf("field out of range in %s:%s", minutes, seconds)
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}
	return float64(h*3600+m*60+s) + float64(ms)/1000, nil
}
