package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/timecode"
)

func newTimecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timecode",
		Short: "Convert between seconds and timestamps",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "format <seconds>",
		Short: "Print seconds in every timestamp style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid seconds %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Style", "Value"},
				[][]string{
					{"editor", timecode.Format(v)},
					{"vtt", timecode.FormatVTT(v)},
					{"srt", timecode.FormatSRT(v)},
					{"ass", timecode.FormatASS(v)},
					{"clock", timecode.FormatClock(v)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "parse <timestamp>",
		Short: "Print a timestamp as seconds",
		Long:  `Parse MM:SS.mmm, HH:MM:SS.mmm, HH:MM:SS,mmm or plain seconds.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := timecode.ParseInput(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', 3, 64))
			return nil
		},
	})

	return cmd
}
