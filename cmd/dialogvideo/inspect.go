package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/engine"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the resolved lines and the state of the project files",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			cfg := &config.Config{}
			vp := engine.NewVideoProject(cfg, proj, nil)
			plan := engine.BuildPlan(vp.Timeline, vp.Director, cfg.Width, cfg.Height, cfg.FPS)

			rows := make([][]string, 0, len(plan.Lines))
			for _, l := range plan.Lines {
				rows = append(rows, []string{
					strconv.Itoa(l.ID),
					strconv.Itoa(l.Scene),
					l.Character,
					fmt.Sprintf("%d-%d", l.StartFrame, l.EndFrame),
					l.Left,
					l.Right,
					l.Visual,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Scene", "Speaker", "Frames", "Left", "Right", "Visual"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))

			fmt.Fprintln(out, "Project:")
			fmt.Fprintln(out, renderStatusLine("Script", statusOK, proj.ScriptPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Timeline", statusInfo,
				fmt.Sprintf("%d frames, %.1fs @ %d fps", plan.TotalFrames, plan.Duration, plan.FPS), colorize))

			_, missing := engine.BuildAudioPlan(proj, vp.Timeline, cfg.FPS, cfg.PlaybackRate)
			if len(missing) == 0 {
				fmt.Fprintln(out, renderStatusLine("Audio", statusOK, "all files present", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Audio", statusWarn, fmt.Sprintf("%d files missing", len(missing)), colorize))
				for _, m := range missing {
					fmt.Fprintf(out, "    %s\n", m)
				}
			}

			if len(proj.Mouth) == 0 {
				fmt.Fprintln(out, renderStatusLine("Lip sync", statusWarn, "no mouth data, mouths flap", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Lip sync", statusOK, fmt.Sprintf("%d voice files", len(proj.Mouth)), colorize))
			}

			if len(proj.Warnings) == 0 {
				fmt.Fprintln(out, renderStatusLine("Warnings", statusOK, "none", colorize))
			}
			for _, w := range proj.Warnings {
				fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, w, colorize))
			}
			return nil
		},
	}
}
