package server

import (
	"net/http"

	"github.com/mgpai22/captioner/internal/timecode"
)

type playbackResponse struct {
	Position float64        `json:"position"`
	Clock    string         `json:"clock"`
	Duration float64        `json:"duration"` // 0 when unknown
	Playing  bool           `json:"playing"`
	Volume   float64        `json:"volume"`
	Muted    bool           `json:"muted"`
	Active   activeResponse `json:"active"`
}

// exactly one of the fields moves the playhead
type seekRequest struct {
	Position *float64 `json:"position"`
	Delta    *float64 `json:"delta"`
	Skip     string   `json:"skip"` // "forward" or "back", by the configured step
}

type volumeRequest struct {
	Volume *float64 `json:"volume"`
}

func (s *Server) playbackBody() playbackResponse {
	pos := s.player.Position()
	vol := s.player.Volume()
	return playbackResponse{
		Position: pos,
		Clock:    timecode.FormatClock(pos),
		Duration: s.player.Duration(),
		Playing:  s.player.Playing(),
		Volume:   vol,
		Muted:    vol == 0,
		Active:   activeBody(s.tracker.Active()),
	}
}

func (s *Server) handlePlaybackState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.playbackBody())
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set := 0
	for _, given := range []bool{req.Position != nil, req.Delta != nil, req.Skip != ""} {
		if given {
			set++
		}
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest, "send exactly one of position, delta or skip")
		return
	}

	switch {
	case req.Position != nil:
		if *req.Position < 0 {
			writeError(w, http.StatusBadRequest, "position must be a non-negative number of seconds")
			return
		}
		s.player.Seek(*req.Position)
	case req.Delta != nil:
		s.player.SeekBy(*req.Delta)
	case req.Skip == "forward":
		s.player.SkipForward()
	case req.Skip == "back":
		s.player.SkipBack()
	default:
		writeError(w, http.StatusBadRequest, `skip must be "forward" or "back"`)
		return
	}
	writeJSON(w, http.StatusOK, s.playbackBody())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	playing := s.player.TogglePlay()
	s.logger.Debugw("playback toggled", "playing", playing, "position", s.player.Position())
	writeJSON(w, http.StatusOK, s.playbackBody())
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	s.player.ToggleMute()
	writeJSON(w, http.StatusOK, s.playbackBody())
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Volume == nil {
		writeError(w, http.StatusBadRequest, "volume is required")
		return
	}
	s.player.SetVolume(*req.Volume)
	writeJSON(w, http.StatusOK, s.playbackBody())
}
