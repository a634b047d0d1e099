package playback

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultProgressInterval = 100 * time.Millisecond
	DefaultSkip             = 5.0
	defaultVolume           = 0.8
)

// Player is what the editor needs from a video widget.
type Player interface {
	// OnProgress registers the callback fed with the position in seconds
	// at a bounded interval while the player runs.
	OnProgress(fn func(position float64))
	Seek(position float64)
	Duration() float64
	TogglePlay() bool
}

// Options tune a ClockPlayer.
type Options struct {
	Interval time.Duration // progress callback period
	Skip     float64       // seconds moved by SkipForward/SkipBack
	Speed    float64       // playback rate, 1 is real time
}

// ClockPlayer plays a timeline of known duration against the wall clock.
// It decodes nothing; it only reports where playback would be.
type ClockPlayer struct {
	mu       sync.Mutex
	duration float64
	position float64
	playing  bool
	volume   float64
	lastVol  float64
	opts     Options
	progress func(float64)
	now      func() time.Time
	last     time.Time
}

// NewClockPlayer builds a paused player at position 0. A duration of zero
// or less means the end is unknown and playback never stops on its own.
func NewClockPlayer(duration float64, opts Options) *ClockPlayer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultProgressInterval
	}
	if opts.Skip <= 0 {
		opts.Skip = DefaultSkip
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	return &ClockPlayer{
		duration: duration,
		volume:   defaultVolume,
		lastVol:  defaultVolume,
		opts:     opts,
		now:      time.Now,
	}
}

func (p *ClockPlayer) OnProgress(fn func(position float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = fn
}

func (p *ClockPlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Position is the current playback position in seconds.
func (p *ClockPlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *ClockPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Play starts playback; restarting at the end rewinds to 0.
func (p *ClockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startLocked()
}

func (p *ClockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// TogglePlay flips between playing and paused and returns the new state.
func (p *ClockPlayer) TogglePlay() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.playing = false
	} else {
		p.startLocked()
	}
	return p.playing
}

func (p *ClockPlayer) startLocked() {
	if p.duration > 0 && p.position >= p.duration {
		p.position = 0
	}
	p.playing = true
	p.last = p.now()
}

// Seek jumps to an absolute position, clamped to the timeline, and reports
// it through the progress callback.
func (p *ClockPlayer) Seek(position float64) {
	p.mu.Lock()
	p.position = p.clamp(position)
	p.last = p.now()
	pos, fn := p.position, p.progress
	p.mu.Unlock()

	if fn != nil {
		fn(pos)
	}
}

// SkipForward and SkipBack move by the configured skip step.
func (p *ClockPlayer) SkipForward() { p.SeekBy(p.opts.Skip) }
func (p *ClockPlayer) SkipBack()    { p.SeekBy(-p.opts.Skip) }

// SeekBy moves relative to the current position.
func (p *ClockPlayer) SeekBy(delta float64) {
	p.mu.Lock()
	target := p.position + delta
	p.mu.Unlock()
	p.Seek(target)
}

func (p *ClockPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume clamps v to [0, 1].
func (p *ClockPlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	if v > 0 {
		p.lastVol = v
	}
	p.volume = v
}

// ToggleMute silences the player or restores the last audible volume.
func (p *ClockPlayer) ToggleMute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.volume == 0 {
		p.volume = p.lastVol
		return
	}
	p.lastVol = p.volume
	p.volume = 0
}

// Run drives progress callbacks until ctx is done or playback reaches the
// end of a known duration.
func (p *ClockPlayer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ended := p.tick(); ended {
				return nil
			}
		}
	}
}

// advances by the wall time since the last tick and reports the position
func (p *ClockPlayer) tick() bool {
	p.mu.Lock()
	now := p.now()
	elapsed := now.Sub(p.last)
	p.last = now
	if !p.playing {
		p.mu.Unlock()
		return false
	}

	p.position = p.clamp(p.position + elapsed.Seconds()*p.opts.Speed)
	ended := p.duration > 0 && p.position >= p.duration
	if ended {
		p.playing = false
	}
	pos, fn := p.position, p.progress
	p.mu.Unlock()

	if fn != nil {
		fn(pos)
	}
	return ended
}

func (p *ClockPlayer) clamp(position float64) float64 {
	if position < 0 {
		return 0
	}
	if p.duration > 0 && position > p.duration {
		return p.duration
	}
	return position
}
