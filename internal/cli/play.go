package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/media"
	"github.com/mgpai22/captioner/internal/playback"
	"github.com/mgpai22/captioner/internal/timecode"
)

func newPlayCommand(cc *commandContext) *cobra.Command {
	var (
		from     string
		duration float64
		speed    float64
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the caption timeline in real time",
		Long: `Run a playback clock over the loaded video and print each caption as
it appears and disappears. Nothing is decoded; the video's duration comes
from ffprobe when available, otherwise from the last caption.

While playing, type a key and press Enter: space toggles play/pause, f and
b skip by playback.skip_seconds, m toggles mute, q stops.

Examples:
  captioner play
  captioner play --from 01:30.000 --speed 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			store, err := cc.requireVideo(cmd.Context())
			if err != nil {
				return err
			}

			start, err := timecode.ParseInput(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}

			if duration <= 0 {
				duration = timelineDuration(cmd.Context(), cc, store.VideoURL(), store.NextStart())
			}
			if duration <= 0 {
				return errors.New("nothing to play: no captions and the video duration is unknown")
			}

			out := &syncWriter{w: cmd.OutOrStdout()}
			player := playback.NewClockPlayer(duration, playback.Options{
				Interval: cfg.ProgressInterval(),
				Skip:     cfg.Playback.SkipSeconds,
				Speed:    speed,
			})
			tracker := playback.NewTracker(store.Captions)
			tracker.OnChange(func(a playback.Active) {
				if a.Found() {
					fmt.Fprintf(out, "[%s] #%d %s\n", timecode.FormatClock(a.Position), a.Index+1, a.Caption.Text)
					return
				}
				fmt.Fprintf(out, "[%s] (no caption)\n", timecode.FormatClock(a.Position))
			})
			player.OnProgress(tracker.Update)

			fmt.Fprintf(out, "Playing %s from %s / %s\n",
				store.VideoURL(), timecode.FormatClock(start), timecode.FormatClock(duration))
			fmt.Fprintln(out, "Keys: space play/pause, f/b skip, m mute, q quit (then Enter)")
			player.Seek(start)
			player.Play()

			ctx, stop := context.WithCancel(cmd.Context())
			defer stop()
			go readPlayKeys(ctx, cmd.InOrStdin(), player, out, stop)

			err = player.Run(ctx)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintf(out, "Stopped at %s\n", timecode.FormatClock(player.Position()))
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "0", "Start position")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Timeline length in seconds (default: probed)")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Playback rate")
	return cmd
}

// serializes output from the player clock and the key reader
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// applies single-key commands from in until q, EOF or ctx is done
func readPlayKeys(ctx context.Context, in io.Reader, player *playback.ClockPlayer, out io.Writer, quit func()) {
	r := bufio.NewReader(in)
	for ctx.Err() == nil {
		key, _, err := r.ReadRune()
		if err != nil {
			return
		}
		if !handlePlayKey(key, player, out) {
			quit()
			return
		}
	}
}

// handlePlayKey runs one control key and reports whether playback goes on.
func handlePlayKey(key rune, player *playback.ClockPlayer, out io.Writer) bool {
	switch unicode.ToLower(key) {
	case ' ', 'p':
		if player.TogglePlay() {
			fmt.Fprintf(out, "Playing from %s\n", timecode.FormatClock(player.Position()))
		} else {
			fmt.Fprintf(out, "Paused at %s\n", timecode.FormatClock(player.Position()))
		}
	case 'f', 'l':
		player.SkipForward()
	case 'b', 'j':
		player.SkipBack()
	case 'm':
		player.ToggleMute()
		if v := player.Volume(); v == 0 {
			fmt.Fprintln(out, "Muted")
		} else {
			fmt.Fprintf(out, "Volume %.0f%%\n", v*100)
		}
	case 'q':
		return false
	}
	return true
}

// video length from ffprobe, falling back to the end of the last caption
func timelineDuration(ctx context.Context, cc *commandContext, videoURL string, lastEnd float64) float64 {
	info, err := media.Probe(ctx, videoURL)
	if err != nil {
		cc.log().Debugw("probe failed, using caption timeline", "url", videoURL, "error", err)
		return lastEnd
	}
	if info.Duration <= 0 {
		return lastEnd
	}
	return info.Duration
}
