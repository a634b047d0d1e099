// Package playback follows the playback position reported by a player and
// answers which caption is on screen.
package playback

import (
	"sync"

	"github.com/mgpai22/captioner/internal/caption"
)

// ActiveCaption returns the first caption, in list order, whose inclusive
// range contains position. Overlapping captions resolve to the earliest
// entry in the list, not the earliest start time.
func ActiveCaption(captions []caption.Caption, position float64) (caption.Caption, int, bool) {
	for i, c := range captions {
		if c.Contains(position) {
			return c, i, true
		}
	}
	return caption.Caption{}, -1, false
}

// Active is the caption shown at a position. Index is -1 when none is.
type Active struct {
	Position float64
	Index    int
	Caption  caption.Caption
}

// Found reports whether a caption is shown.
func (a Active) Found() bool {
	return a.Index >= 0
}

// Tracker receives position updates and resolves the active caption
// against the current caption list on every lookup, so edits show up
// without re-registering.
type Tracker struct {
	mu        sync.Mutex
	position  float64
	captions  func() []caption.Caption
	onChange  func(Active)
	lastIndex int
}

// NewTracker reads captions through source on each lookup.
func NewTracker(source func() []caption.Caption) *Tracker {
	return &Tracker{captions: source, lastIndex: -1}
}

// OnChange registers fn to run when an update moves the active caption to
// a different index (including to none).
func (t *Tracker) OnChange(fn func(Active)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Update records the latest playback position. Positions may move
// backwards after a seek.
func (t *Tracker) Update(position float64) {
	t.mu.Lock()
	t.position = position
	active := t.resolve(position)
	fn := t.onChange
	changed := active.Index != t.lastIndex
	t.lastIndex = active.Index
	t.mu.Unlock()

	if changed && fn != nil {
		fn(active)
	}
}

// Position is the last reported position in seconds.
func (t *Tracker) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Active resolves the caption at the last reported position.
func (t *Tracker) Active() Active {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolve(t.position)
}

func (t *Tracker) resolve(position float64) Active {
	var list []caption.Caption
	if t.captions != nil {
		list = t.captions()
	}
	c, idx, _ := ActiveCaption(list, position)
	return Active{Position: position, Index: idx, Caption: c}
}
