package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/media"
	"github.com/mgpai22/captioner/internal/timecode"
)

func newBurnCommand(cc *commandContext) *cobra.Command {
	var (
		output   string
		fontSize int
		crf      int
		preset   string
	)

	cmd := &cobra.Command{
		Use:   "burn [video]",
		Short: "Render the captions into a copy of the video",
		Long: `Burn the captions into the picture with ffmpeg's subtitles filter.
The video defaults to the loaded URL. Audio is copied as is.

Requires ffmpeg on PATH or CAPTIONER_FFMPEG_PATH.

Examples:
  captioner burn -o captioned.mp4
  captioner burn talk.mp4 -o talk_captioned.mp4 --font-size 28`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}

			video := store.VideoURL()
			if len(args) == 1 {
				video = args[0]
			}
			if video == "" {
				return errors.New("no video given and none loaded")
			}
			if output == "" {
				return errors.New("--output is required")
			}

			opts := media.DefaultBurnOptions()
			opts.FontSize = fontSize
			opts.VideoCRF = crf
			if preset != "" {
				opts.Preset = preset
			}

			cc.log().Infow("burning captions", "video", video, "output", output, "count", store.Len())
			if err := media.BurnCaptions(cmd.Context(), video, store.Captions(), output, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path")
	cmd.Flags().IntVar(&fontSize, "font-size", 0, "Caption font size (default: style default)")
	cmd.Flags().IntVar(&crf, "crf", 0, "x264 CRF quality (default: ffmpeg default)")
	cmd.Flags().StringVar(&preset, "preset", "", "x264 preset (default: medium)")
	return cmd
}

func newProbeCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [video]",
		Short: "Show video duration and stream info",
		Long: `Inspect a video with ffprobe. The video defaults to the loaded URL.

Requires ffprobe on PATH or CAPTIONER_FFPROBE_PATH.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var video string
			if len(args) == 1 {
				video = args[0]
			} else {
				store, err := cc.requireVideo(cmd.Context())
				if err != nil {
					return err
				}
				video = store.VideoURL()
			}

			info, err := media.Probe(cmd.Context(), video)
			if err != nil {
				return err
			}

			duration := "unknown"
			if info.Duration > 0 {
				duration = fmt.Sprintf("%s (%.3fs)", timecode.FormatClock(info.Duration), info.Duration)
			}
			resolution := "-"
			if info.Width > 0 && info.Height > 0 {
				resolution = fmt.Sprintf("%dx%d", info.Width, info.Height)
			}
			audio := "no"
			if info.HasAudio {
				audio = "yes"
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Source", info.Source},
					{"Duration", duration},
					{"Resolution", resolution},
					{"Codec", strings.ToUpper(info.Codec)},
					{"Audio", audio},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
