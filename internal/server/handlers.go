package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/playback"
	"github.com/mgpai22/captioner/internal/subtitle"
	"github.com/mgpai22/captioner/internal/timecode"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	VideoURL string            `json:"videoUrl"`
	Captions []caption.Caption `json:"captions"`
}

type videoRequest struct {
	URL string `json:"url"`
}

// StartTime is optional on create and defaults to the end of the last caption.
type captionRequest struct {
	Text      string   `json:"text"`
	StartTime *float64 `json:"startTime"`
	EndTime   *float64 `json:"endTime"`
}

// omitted fields keep their current value
type captionUpdateRequest struct {
	Text      *string  `json:"text"`
	StartTime *float64 `json:"startTime"`
	EndTime   *float64 `json:"endTime"`
}

type captionResponse struct {
	Index   int             `json:"index"` // 1-based
	Caption caption.Caption `json:"caption"`
}

type positionRequest struct {
	Position *float64 `json:"position"`
}

type activeResponse struct {
	Position float64          `json:"position"`
	Clock    string           `json:"clock"`
	Index    *int             `json:"index"`
	Caption  *caption.Caption `json:"caption"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writes the status that matches a store error
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, caption.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, caption.ErrEmptyText),
		errors.Is(err, caption.ErrInvalidRange),
		errors.Is(err, caption.ErrNegativeStart),
		errors.Is(err, caption.ErrInvalidVideoURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Errorw("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parses the 1-based {index} path segment into a store index
func captionIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", caption.ErrIndexOutOfRange, raw)
	}
	return n - 1, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sessionBody() sessionResponse {
	sess := s.store.Session()
	if sess.Captions == nil {
		sess.Captions = []caption.Caption{}
	}
	return sessionResponse{VideoURL: sess.VideoURL, Captions: sess.Captions}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionBody())
}

func (s *Server) handleSetVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SetVideoURL(r.Context(), req.URL); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionBody())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset(r.Context())
	s.player.Pause()
	s.player.Seek(0)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCaptions(w http.ResponseWriter, r *http.Request) {
	captions := s.store.Captions()
	if captions == nil {
		captions = []caption.Caption{}
	}
	writeJSON(w, http.StatusOK, captions)
}

func (s *Server) handleAddCaption(w http.ResponseWriter, r *http.Request) {
	if s.store.VideoURL() == "" {
		writeError(w, http.StatusConflict, "no video loaded")
		return
	}

	var req captionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.EndTime == nil {
		writeError(w, http.StatusBadRequest, "endTime is required")
		return
	}
	c := caption.Caption{Text: req.Text, StartTime: s.store.NextStart(), EndTime: *req.EndTime}
	if req.StartTime != nil {
		c.StartTime = *req.StartTime
	}

	idx, err := s.store.Add(r.Context(), c)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	stored, _ := s.store.Caption(idx)
	writeJSON(w, http.StatusCreated, captionResponse{Index: idx + 1, Caption: stored})
}

func (s *Server) handleUpdateCaption(w http.ResponseWriter, r *http.Request) {
	idx, err := captionIndex(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	current, err := s.store.Caption(idx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	var req captionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := current
	if req.Text != nil {
		c.Text = *req.Text
	}
	if req.StartTime != nil {
		c.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		c.EndTime = *req.EndTime
	}

	if err := s.store.Update(r.Context(), idx, c); err != nil {
		s.writeStoreError(w, err)
		return
	}
	stored, _ := s.store.Caption(idx)
	writeJSON(w, http.StatusOK, captionResponse{Index: idx + 1, Caption: stored})
}

func (s *Server) handleDeleteCaption(w http.ResponseWriter, r *http.Request) {
	idx, err := captionIndex(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := s.store.Remove(r.Context(), idx); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Position == nil || *req.Position < 0 {
		writeError(w, http.StatusBadRequest, "position must be a non-negative number of seconds")
		return
	}
	s.player.Seek(*req.Position)
	writeJSON(w, http.StatusOK, activeBody(s.tracker.Active()))
}

// reports the caption at ?at= (editor timestamp or seconds), or at the
// last reported position
func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	at := r.URL.Query().Get("at")
	if at == "" {
		writeJSON(w, http.StatusOK, activeBody(s.tracker.Active()))
		return
	}

	pos, err := timecode.ParseInput(at)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, idx, _ := playback.ActiveCaption(s.store.Captions(), pos)
	writeJSON(w, http.StatusOK, activeBody(playback.Active{Position: pos, Index: idx, Caption: c}))
}

func activeBody(a playback.Active) activeResponse {
	resp := activeResponse{Position: a.Position, Clock: timecode.Format(a.Position)}
	if a.Found() {
		n := a.Index + 1
		c := a.Caption
		resp.Index = &n
		resp.Caption = &c
	}
	return resp
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := subtitle.FormatVTT
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := subtitle.ParseFormat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = parsed
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := strings.TrimSuffix(subtitle.DefaultFilename, ".vtt") + writer.Extension()
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := writer.Write(w, s.store.Captions()); err != nil {
		s.logger.Warnw("export write failed", "error", err)
	}
}
