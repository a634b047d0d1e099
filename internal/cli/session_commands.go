package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/playback"
	"github.com/mgpai22/captioner/internal/timecode"
)

// parses a 1-based caption number into a store index
func parseCaptionNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid caption number %q: use the # shown by `captioner list`", arg)
	}
	return n - 1, nil
}

func parseTimeFlag(cmd *cobra.Command, name string) (float64, error) {
	raw, _ := cmd.Flags().GetString(name)
	v, err := timecode.ParseInput(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func describe(n int, c caption.Caption) string {
	return fmt.Sprintf("#%d %s --> %s %q", n, timecode.Format(c.StartTime), timecode.Format(c.EndTime), c.Text)
}

func newLoadCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <video-url>",
		Short: "Load a video URL to caption",
		Long: `Load a video by URL. The URL must point at an .mp4, .webm, .ogg or
.mov file, or be a YouTube or Vimeo link. Existing captions are kept.

Examples:
  captioner load https://example.com/talk.mp4
  captioner load "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.SetVideoURL(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s (%d captions)\n", store.VideoURL(), store.Len())
			return nil
		},
	}
}

func newAddCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a caption",
		Long: `Add a caption to the end of the list.

Times accept MM:SS.mmm, HH:MM:SS.mmm or plain seconds. The start time
defaults to the end of the last caption.

Examples:
  captioner add "Hello there" --start 00:01.000 --end 00:03.500
  captioner add "General Kenobi" --duration 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cc.requireVideo(cmd.Context())
			if err != nil {
				return err
			}

			start := store.NextStart()
			if cmd.Flags().Changed("start") {
				if start, err = parseTimeFlag(cmd, "start"); err != nil {
					return err
				}
			}

			var end float64
			switch {
			case cmd.Flags().Changed("end"):
				if end, err = parseTimeFlag(cmd, "end"); err != nil {
					return err
				}
			case cmd.Flags().Changed("duration"):
				d, _ := cmd.Flags().GetFloat64("duration")
				end = start + d
			default:
				return errors.New("either --end or --duration is required")
			}

			idx, err := store.Add(cmd.Context(), caption.Caption{Text: args[0], StartTime: start, EndTime: end})
			if err != nil {
				return err
			}
			c, _ := store.Caption(idx)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", describe(idx+1, c))
			return nil
		},
	}
	cmd.Flags().StringP("start", "s", "", "Start time (default: end of the last caption)")
	cmd.Flags().StringP("end", "e", "", "End time")
	cmd.Flags().Float64P("duration", "d", 0, "Length in seconds, instead of --end")
	cmd.MarkFlagsMutuallyExclusive("end", "duration")
	return cmd
}

func newEditCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <number>",
		Short: "Change a caption's text or times",
		Long: `Replace fields of an existing caption. Fields without a flag keep
their current value. The edited caption must still be valid.

Examples:
  captioner edit 2 --text "Fixed typo"
  captioner edit 3 --start 01:02.250 --end 01:04.000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseCaptionNumber(args[0])
			if err != nil {
				return err
			}
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			c, err := store.Caption(idx)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("text") && !cmd.Flags().Changed("start") && !cmd.Flags().Changed("end") {
				return errors.New("nothing to change: pass --text, --start or --end")
			}
			if cmd.Flags().Changed("text") {
				c.Text, _ = cmd.Flags().GetString("text")
			}
			if cmd.Flags().Changed("start") {
				if c.StartTime, err = parseTimeFlag(cmd, "start"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("end") {
				if c.EndTime, err = parseTimeFlag(cmd, "end"); err != nil {
					return err
				}
			}

			if err := store.Update(cmd.Context(), idx, c); err != nil {
				return err
			}
			c, _ = store.Caption(idx)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", describe(idx+1, c))
			return nil
		},
	}
	cmd.Flags().StringP("text", "t", "", "New caption text")
	cmd.Flags().StringP("start", "s", "", "New start time")
	cmd.Flags().StringP("end", "e", "", "New end time")
	return cmd
}

func newDeleteCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <number>",
		Aliases: []string{"rm"},
		Short:   "Delete a caption",
		Long:    `Delete a caption. Captions after it move up by one number.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseCaptionNumber(args[0])
			if err != nil {
				return err
			}
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			c, err := store.Caption(idx)
			if err != nil {
				return err
			}
			if err := store.Remove(cmd.Context(), idx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", describe(idx+1, c))
			return nil
		},
	}
}

func newListCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List captions",
		Long: `Show the loaded video and its captions in order. With --at, the caption
on screen at that time is marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			sess := store.Session()
			if sess.VideoURL == "" {
				fmt.Fprintln(out, "Video: (none loaded)")
			} else {
				fmt.Fprintf(out, "Video: %s\n", sess.VideoURL)
			}
			if len(sess.Captions) == 0 {
				fmt.Fprintln(out, "No captions")
				return nil
			}

			active := -1
			if cmd.Flags().Changed("at") {
				at, err := parseTimeFlag(cmd, "at")
				if err != nil {
					return err
				}
				_, active, _ = playback.ActiveCaption(sess.Captions, at)
			}

			rows := make([][]string, 0, len(sess.Captions))
			for i, c := range sess.Captions {
				marker := ""
				if i == active {
					marker = "▶"
				}
				rows = append(rows, []string{
					marker,
					strconv.Itoa(i + 1),
					timecode.Format(c.StartTime),
					timecode.Format(c.EndTime),
					strings.ReplaceAll(c.Text, "\n", " / "),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"", "#", "Start", "End", "Text"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().String("at", "", "Mark the caption shown at this time")
	return cmd
}

func newActiveCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "active <time>",
		Short: "Show the caption on screen at a time",
		Long: `Print the caption visible at the given playback time. When captions
overlap, the one added first wins.

Examples:
  captioner active 00:12.000
  captioner active 75.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := timecode.ParseInput(args[0])
			if err != nil {
				return err
			}
			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			c, idx, ok := playback.ActiveCaption(store.Captions(), at)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No caption at %s\n", timecode.Format(at))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(idx+1, c))
			return nil
		},
	}
}

func newResetCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the video and all captions",
		Long:  `Clear the session and erase it from storage. This cannot be undone.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "Discard the video and all captions? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			store.Reset(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
