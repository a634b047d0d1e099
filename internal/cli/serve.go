package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/config"
	"github.com/mgpai22/captioner/internal/playback"
	"github.com/mgpai22/captioner/internal/server"
)

func newServeCommand(cc *commandContext) *cobra.Command {
	var (
		bind  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the caption session over HTTP",
		Long: `Start the JSON editing API for the saved session.

Endpoints:
  GET    /api/session              video URL and captions
  PUT    /api/session/video        {"url": "..."}
  DELETE /api/session              reset
  GET    /api/captions             list
  POST   /api/captions             {"text", "startTime", "endTime"}
  PUT    /api/captions/{n}         replace caption n (1-based)
  DELETE /api/captions/{n}         delete caption n
  GET    /api/playback             player state
  POST   /api/playback/position    {"position": seconds}
  POST   /api/playback/seek        {"position"}, {"delta"} or {"skip": "forward"|"back"}
  POST   /api/playback/toggle      play/pause
  POST   /api/playback/mute        mute/unmute
  PUT    /api/playback/volume      {"volume": 0..1}
  GET    /api/playback/active      caption at the position (or ?at=)
  GET    /api/export               download (?format=vtt|srt|ass)
  GET    /metrics, /healthz

With --watch and the file backend, edits made to the session file by
other captioner commands are picked up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("bind") {
				bind = cfg.Server.Bind
			}
			if !cmd.Flags().Changed("watch") {
				watch = cfg.Server.Watch
			}

			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}

			opts := server.Options{
				RateLimitRequests: cfg.Server.RateLimitRequests,
				RateLimitWindow:   cfg.RateLimitWindow(),
				Player: playback.Options{
					Interval: cfg.ProgressInterval(),
					Skip:     cfg.Playback.SkipSeconds,
				},
			}
			if url := store.VideoURL(); url != "" {
				// 0 when ffprobe cannot tell
				opts.Duration = timelineDuration(cmd.Context(), cc, url, 0)
			}
			if watch {
				if cfg.Storage.Backend == config.BackendFile {
					opts.WatchPath = cfg.Storage.Path
				} else {
					cc.log().Warnw("watch ignored: only the file backend can be watched", "backend", cfg.Storage.Backend)
				}
			}

			return server.New(store, cc.log(), opts).Run(cmd.Context(), bind)
		},
	}

	cmd.Flags().StringVarP(&bind, "bind", "b", "", "Listen address (default: server.bind)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload when the session file changes")
	return cmd
}
