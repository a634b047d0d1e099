// Package server exposes one caption session over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/logging"
	"github.com/mgpai22/captioner/internal/playback"
	"github.com/mgpai22/captioner/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	RateLimitRequests int // per client per window, 0 disables
	RateLimitWindow   time.Duration
	WatchPath         string  // session file to watch for outside edits
	Duration          float64 // video length in seconds, 0 when unknown
	Player            playback.Options
}

type Server struct {
	store   *caption.Store
	tracker *playback.Tracker
	player  *playback.ClockPlayer
	logger  *logging.Logger
	opts    Options
	metrics *metrics
	router  chi.Router
}

func New(store *caption.Store, logger *logging.Logger, opts Options) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		store:   store,
		tracker: playback.NewTracker(store.Captions),
		logger:  logger.Named("server"),
		opts:    opts,
		metrics: newMetrics(),
	}
	s.player = playback.NewClockPlayer(opts.Duration, opts.Player)
	s.player.OnProgress(s.tracker.Update)

	s.metrics.captions.Set(float64(store.Len()))
	store.SetObserver(func(op string, count int) {
		s.metrics.mutations.WithLabelValues(op).Inc()
		s.metrics.captions.Set(float64(count))
	})

	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(recoverer(s.logger))
	r.Use(requestID)
	r.Use(accessLog(s.logger, s.metrics))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimitRequests > 0 && s.opts.RateLimitWindow > 0 {
			r.Use(rateLimit(s.opts.RateLimitRequests, s.opts.RateLimitWindow))
		}

		r.Get("/session", s.handleGetSession)
		r.Put("/session/video", s.handleSetVideo)
		r.Delete("/session", s.handleReset)

		r.Get("/captions", s.handleListCaptions)
		r.Post("/captions", s.handleAddCaption)
		r.Put("/captions/{index}", s.handleUpdateCaption)
		r.Delete("/captions/{index}", s.handleDeleteCaption)

		r.Get("/playback", s.handlePlaybackState)
		r.Post("/playback/position", s.handlePosition)
		r.Post("/playback/seek", s.handleSeek)
		r.Post("/playback/toggle", s.handleToggle)
		r.Post("/playback/mute", s.handleMute)
		r.Put("/playback/volume", s.handleVolume)
		r.Get("/playback/active", s.handleActive)

		r.Get("/export", s.handleExport)
	})
	return r
}

// Run serves on bind until ctx is cancelled, then shuts down gracefully.
// When a watch path is set, outside changes to it reload the session.
func (s *Server) Run(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Infow("listening", "bind", bind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Run returns at the end of the timeline; keep the clock alive so a
		// later toggle can replay
		for {
			if err := s.player.Run(gctx); err != nil {
				return nil
			}
		}
	})
	if s.opts.WatchPath != "" {
		g.Go(func() error {
			return storage.WatchFile(gctx, s.opts.WatchPath, s.logger, func() {
				found := s.store.Load(gctx)
				s.metrics.captions.Set(float64(s.store.Len()))
				s.logger.Infow("session reloaded from disk", "found", found, "captions", s.store.Len())
			})
		})
	}
	return g.Wait()
}
