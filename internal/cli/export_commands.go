package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/subtitle"
)

func newExportCommand(cc *commandContext) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the captions to a subtitle file",
		Long: `Export the captions as WebVTT, SRT or ASS.

The format comes from --format, then from the output file extension, then
from export.format in the config file. Use "-o -" to write to stdout.

Examples:
  captioner export
  captioner export -o talk.srt
  captioner export -f ass -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}

			var outFormat subtitle.Format
			switch {
			case format != "":
				if outFormat, err = subtitle.ParseFormat(format); err != nil {
					return err
				}
			case output != "" && output != "-" && filepath.Ext(output) != "":
				outFormat = subtitle.FormatFromExtension(output)
			default:
				if outFormat, err = subtitle.ParseFormat(cfg.Export.Format); err != nil {
					return err
				}
			}

			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			captions := store.Captions()

			if output == "-" {
				w, err := subtitle.NewWriter(outFormat)
				if err != nil {
					return err
				}
				return w.Write(cmd.OutOrStdout(), captions)
			}

			if output == "" {
				w, err := subtitle.NewWriter(outFormat)
				if err != nil {
					return err
				}
				output = "captions" + w.Extension()
			}
			if err := subtitle.WriteFile(output, outFormat, captions); err != nil {
				return err
			}

			cc.log().Debugw("captions exported", "path", output, "format", outFormat, "count", len(captions))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d captions to %s\n", len(captions), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: captions.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Subtitle format: vtt, srt or ass")
	return cmd
}

func newImportCommand(cc *commandContext) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add captions from a subtitle file",
		Long: `Read captions from a .vtt, .srt or .ass file and append them. With
--replace the existing captions are dropped first; the video is kept.
Nothing is imported if any cue in the file is invalid.

Examples:
  captioner import talk.srt
  captioner import old.vtt --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			captions, format, err := subtitle.Open(args[0])
			if err != nil {
				return err
			}

			store, err := cc.requireVideo(cmd.Context())
			if err != nil {
				return err
			}

			for i, c := range captions {
				if _, err := caption.Normalize(c); err != nil {
					return fmt.Errorf("import %s: caption %d: %w", args[0], i+1, err)
				}
			}

			if replace {
				url := store.VideoURL()
				store.Reset(cmd.Context())
				if err := store.SetVideoURL(cmd.Context(), url); err != nil {
					return err
				}
			}

			n, err := store.AddAll(cmd.Context(), captions)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			cc.log().Debugw("captions imported", "path", args[0], "format", format, "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d captions from %s (%s)\n", n, args[0], format)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Drop existing captions before importing")
	return cmd
}
