package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/engine"
	"github.com/ivlev/dialogvideo/internal/subtitle"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "subtitles",
		Short: "Export the subtitles as SRT",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}
			vp := engine.NewVideoProject(&config.Config{}, proj, nil)
			cues := vp.Subtitles()

			if output == "" || output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), subtitle.RenderSRT(cues))
				return err
			}
			if !strings.EqualFold(filepath.Ext(output), ".srt") {
				output += ".srt"
			}
			if err := subtitle.WriteSRT(output, cues); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Subtitles: %s (%d)\n", output, len(cues))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "SRT file (default: stdout)")
	return cmd
}
