// Package timecode converts playback positions in seconds to and from the
// fixed-width text forms used by the editor and by subtitle files.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour

	// largest instant an epoch clock can represent
	maxEpochMillis = 8.64e15

	// absorbs binary representation error so 1.005s formats as 1.005, not 1.004
	truncSlack = 1e-6
)

var (
	editorPattern = regexp.MustCompile(`^(\d{2}):(\d{2})\.(\d{3})$`)
	vttPattern    = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[.,](\d{3})$`)
)

// ErrInvalidTimestamp is returned by ParseInput for text it cannot read.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// clock is a position split into wall clock fields
type clock struct {
	total   int64 // whole milliseconds, sign preserved
	hours   int64 // hour of the epoch day
	minutes int64
	seconds int64
	millis  int64
}

// splits seconds the way a UTC epoch clock would, truncating toward zero
func split(seconds float64) (clock, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return clock{}, false
	}

	v := seconds * msPerSecond
	if v >= 0 {
		v = math.Floor(v + truncSlack)
	} else {
		v = math.Ceil(v - truncSlack)
	}
	if math.Abs(v) > maxEpochMillis {
		return clock{}, false
	}

	total := int64(v)
	day := total % msPerDay
	if day < 0 {
		day += msPerDay
	}

	return clock{
		total:   total,
		hours:   day / msPerHour,
		minutes: (day / msPerMinute) % 60,
		seconds: (day / msPerSecond) % 60,
		millis:  day % msPerSecond,
	}, true
}

// Format renders seconds as MM:SS.mmm. Minutes come from the epoch clock, so
// positions of an hour or more wrap. NaN and infinities give "00:00.000".
func Format(seconds float64) string {
	c, ok := split(seconds)
	if !ok {
		return "00:00.000"
	}
	return fmt.Sprintf("%02d:%02d.%03d", c.minutes, c.seconds, c.millis)
}

// Parse reads exactly two digits, colon, two digits, period, three digits.
// Any other shape reports ok=false and the caller keeps its previous value.
func Parse(text string) (float64, bool) {
	m := editorPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	minutes, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	millis, _ := strconv.Atoi(m[3])

	return float64(minutes*60+secs) + float64(millis)/msPerSecond, true
}

// fields for the export codecs. Hours are not wrapped.
func exportFields(seconds float64) (h, m, s, ms int64) {
	c, ok := split(seconds)
	if !ok || c.total < 0 {
		return 0, 0, 0, 0
	}
	return c.total / msPerHour, (c.total / msPerMinute) % 60, (c.total / msPerSecond) % 60, c.total % msPerSecond
}

// FormatVTT renders seconds as HH:MM:SS.mmm for WebVTT output.
func FormatVTT(seconds float64) string {
	h, m, s, ms := exportFields(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatSRT renders seconds as HH:MM:SS,mmm for SubRip output.
func FormatSRT(seconds float64) string {
	h, m, s, ms := exportFields(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatASS renders seconds as H:MM:SS.cc for SubStation Alpha output.
func FormatASS(seconds float64) string {
	h, m, s, ms := exportFields(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

// FormatClock renders a player readout: M:SS below an hour, H:MM:SS above.
func FormatClock(seconds float64) string {
	c, ok := split(seconds)
	if !ok {
		return "00:00"
	}
	if c.hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", c.hours, c.minutes, c.seconds)
	}
	return fmt.Sprintf("%d:%02d", c.minutes, c.seconds)
}

// ParseInput accepts the editor form, a full HH:MM:SS.mmm (or SRT comma)
// timestamp, or a plain non-negative number of seconds.
func ParseInput(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if v, ok := Parse(text); ok {
		return v, nil
	}

	if m := vttPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		s, _ := strconv.Atoi(m[3])
		ms, _ := strconv.Atoi(m[4])
		return float64(h*3600+mm*60+s) + float64(ms)/msPerSecond, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %q (want MM:SS.mmm, HH:MM:SS.mmm or seconds)", ErrInvalidTimestamp, text)
	}
	return v, nil
}
