package caption

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mgpai22/captioner/internal/logging"
)

// Persister writes and reads the whole session.
type Persister interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}

// Store is the ordered caption sequence of one session. Captions are
// addressed by their current position; removing one shifts the ones after
// it down by one.
type Store struct {
	mu        sync.Mutex
	session   Session
	persister Persister
	logger    *logging.Logger
	observe   func(op string, count int)
}

func NewStore(p Persister, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{persister: p, logger: logger}
}

// SetObserver registers a callback run after every successful mutation
// with the resulting caption count. It runs with the store locked and
// must not call back into the store.
func (s *Store) SetObserver(fn func(op string, count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observe = fn
}

// Load initializes the store from persisted state. Missing or unreadable
// state counts as no prior session; the result reports whether one was found.
func (s *Store) Load(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = Session{}
	if s.persister == nil {
		return false
	}

	sess, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Debugw("No prior session loaded", "error", err)
		return false
	}

	// drop records that would not pass the input boundary
	valid := make([]Caption, 0, len(sess.Captions))
	for i, c := range sess.Captions {
		nc, err := Normalize(c)
		if err != nil {
			s.logger.Warnw("Skipping invalid persisted caption", "index", i, "error", err)
			continue
		}
		valid = append(valid, nc)
	}
	sess.Captions = valid
	s.session = sess

	return !sess.Empty()
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{
		VideoURL: s.session.VideoURL,
		Captions: slices.Clone(s.session.Captions),
	}
}

// Captions returns a copy of the caption sequence.
func (s *Store) Captions() []Caption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.session.Captions)
}

func (s *Store) VideoURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.VideoURL
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.session.Captions)
}

// Caption returns the caption at index.
func (s *Store) Caption(index int) (Caption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return Caption{}, err
	}
	return s.session.Captions[index], nil
}

// NextStart suggests where the next caption begins: the end of the last one.
func (s *Store) NextStart() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.session.Captions)
	if n == 0 {
		return 0
	}
	return s.session.Captions[n-1].EndTime
}

// SetVideoURL validates and records the video source, starting a session.
func (s *Store) SetVideoURL(ctx context.Context, raw string) error {
	if err := ValidateVideoURL(raw); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.VideoURL = strings.TrimSpace(raw)
	s.commit(ctx, "set_video")
	return nil
}

// Add appends a caption and returns its index.
func (s *Store) Add(ctx context.Context, c Caption) (int, error) {
	nc, err := Normalize(c)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Captions = append(s.session.Captions, nc)
	s.commit(ctx, "add")
	return len(s.session.Captions) - 1, nil
}

// AddAll appends several captions. Nothing is added unless all are valid.
func (s *Store) AddAll(ctx context.Context, captions []Caption) (int, error) {
	normalized := make([]Caption, 0, len(captions))
	for i, c := range captions {
		nc, err := Normalize(c)
		if err != nil {
			return 0, fmt.Errorf("caption %d: %w", i+1, err)
		}
		normalized = append(normalized, nc)
	}
	if len(normalized) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Captions = append(s.session.Captions, normalized...)
	s.commit(ctx, "add")
	return len(normalized), nil
}

// Update replaces the caption at index in place.
func (s *Store) Update(ctx context.Context, index int, c Caption) error {
	nc, err := Normalize(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.session.Captions[index] = nc
	s.commit(ctx, "update")
	return nil
}

// Remove deletes the caption at index.
func (s *Store) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.session.Captions = slices.Delete(s.session.Captions, index, index+1)
	s.commit(ctx, "remove")
	return nil
}

// Reset clears the captions and the video URL and erases persisted state.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	if s.persister != nil {
		if err := s.persister.Clear(ctx); err != nil {
			s.logger.Warnw("Failed to erase persisted session", "error", err)
		}
	}
	s.notify("reset")
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.session.Captions) {
		if len(s.session.Captions) == 0 {
			return fmt.Errorf("%w: %d (no captions)", ErrIndexOutOfRange, index)
		}
		return fmt.Errorf(
			"%w: %d (0-%d)",
			ErrIndexOutOfRange,
			index,
			len(s.session.Captions)-1,
		)
	}
	return nil
}

// writes the session; failures are logged, never returned. Caller holds mu.
func (s *Store) commit(ctx context.Context, op string) {
	if s.persister != nil {
		snapshot := Session{
			VideoURL: s.session.VideoURL,
			Captions: slices.Clone(s.session.Captions),
		}
		if err := s.persister.Save(ctx, snapshot); err != nil {
			s.logger.Warnw("Failed to persist session", "op", op, "error", err)
		}
	}
	s.notify(op)
}

func (s *Store) notify(op string) {
	if s.observe != nil {
		s.observe(op, len(s.session.Captions))
	}
}
