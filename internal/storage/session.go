package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mgpai22/captioner/internal/caption"
)

// ErrNoSession means neither session key is present.
var ErrNoSession = errors.New("no saved session")

// SessionRepo maps a caption.Session onto the two storage keys.
type SessionRepo struct {
	kv KV
}

func NewSessionRepo(kv KV) *SessionRepo {
	return &SessionRepo{kv: kv}
}

// Save overwrites both keys. An empty URL deletes the URL key.
func (r *SessionRepo) Save(ctx context.Context, s caption.Session) error {
	captions := s.Captions
	if captions == nil {
		captions = []caption.Caption{}
	}
	data, err := json.Marshal(captions)
	if err != nil {
		return fmt.Errorf("encode captions: %w", err)
	}
	if err := r.kv.Set(ctx, KeyCaptions, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", KeyCaptions, err)
	}

	if s.VideoURL == "" {
		if err := r.kv.Delete(ctx, KeyVideoURL); err != nil {
			return fmt.Errorf("delete %s: %w", KeyVideoURL, err)
		}
		return nil
	}
	if err := r.kv.Set(ctx, KeyVideoURL, s.VideoURL); err != nil {
		return fmt.Errorf("write %s: %w", KeyVideoURL, err)
	}
	return nil
}

// Load reads both keys. Unparseable captions are reported as an error so
// the caller can start without a prior session.
func (r *SessionRepo) Load(ctx context.Context) (caption.Session, error) {
	var s caption.Session
	found := false

	url, err := r.kv.Get(ctx, KeyVideoURL)
	switch {
	case err == nil:
		s.VideoURL = url
		found = true
	case !errors.Is(err, ErrNotFound):
		return caption.Session{}, fmt.Errorf("read %s: %w", KeyVideoURL, err)
	}

	raw, err := r.kv.Get(ctx, KeyCaptions)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &s.Captions); err != nil {
			return caption.Session{}, fmt.Errorf("parse %s: %w", KeyCaptions, err)
		}
		found = true
	case !errors.Is(err, ErrNotFound):
		return caption.Session{}, fmt.Errorf("read %s: %w", KeyCaptions, err)
	}

	if !found {
		return caption.Session{}, ErrNoSession
	}
	return s, nil
}

// Clear removes both keys.
func (r *SessionRepo) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, KeyCaptions, KeyVideoURL)
}
