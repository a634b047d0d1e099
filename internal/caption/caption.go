// Package caption holds the caption timeline of an editing session and
// persists it after every change.
package caption

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrEmptyText       = errors.New("caption text is empty")
	ErrInvalidRange    = errors.New("end time must be greater than start time")
	ErrNegativeStart   = errors.New("start time must not be negative")
	ErrInvalidVideoURL = errors.New("invalid video URL")
	ErrIndexOutOfRange = errors.New("caption index out of range")
)

// text fragment bound to a playback time range, in seconds
type Caption struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Normalize trims the text and validates the time range. The returned
// caption is what gets stored.
func Normalize(c Caption) (Caption, error) {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return Caption{}, ErrEmptyText
	}
	if !finite(c.StartTime) || !finite(c.EndTime) {
		return Caption{}, ErrInvalidRange
	}
	if c.StartTime < 0 {
		return Caption{}, ErrNegativeStart
	}
	if c.StartTime >= c.EndTime {
		return Caption{}, ErrInvalidRange
	}
	return c, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Contains reports whether position falls inside the inclusive range.
func (c Caption) Contains(position float64) bool {
	return position >= c.StartTime && position <= c.EndTime
}

// Duration is the caption length in seconds.
func (c Caption) Duration() float64 {
	return c.EndTime - c.StartTime
}

// persisted pairing of a video source and its captions
type Session struct {
	VideoURL string    `json:"videoUrl"`
	Captions []Caption `json:"captions"`
}

// Empty reports whether there is no prior session.
func (s Session) Empty() bool {
	return s.VideoURL == "" && len(s.Captions) == 0
}

var videoExtPattern = regexp.MustCompile(`(?i)\.(mp4|webm|ogg|mov)($|\?)`)

var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// ValidateVideoURL accepts absolute URLs that point at a video file or a
// recognised hosting site.
func ValidateVideoURL(raw string) error {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVideoURL, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidVideoURL, raw)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidVideoURL, raw)
	}

	if videoExtPattern.MatchString(raw) {
		return nil
	}
	for _, host := range videoHosts {
		if strings.Contains(raw, host) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not an mp4, webm, ogg or mov file or a YouTube/Vimeo link", ErrInvalidVideoURL, raw)
}
