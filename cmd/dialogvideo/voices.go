package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/dialogvideo/internal/engine"
	"github.com/ivlev/dialogvideo/internal/script"
	"github.com/ivlev/dialogvideo/internal/system"
	"github.com/ivlev/dialogvideo/internal/voices"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "Prepare and measure voice files",
	}
	cmd.AddCommand(newVoicesManifestCommand(ctx))
	cmd.AddCommand(newVoicesSyncCommand(ctx))
	return cmd
}

func newVoicesManifestCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "List the voice files to record or synthesize",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(proj.VoicesDir(), "manifest.yaml")
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			entries := voices.Manifest(proj.Script, proj.Roster)
			if err := voices.WriteManifest(output, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Manifest: %s (%d lines)\n", output, len(entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Manifest path (default: public/voices/manifest.yaml)")
	return cmd
}

func newVoicesSyncCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var update bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Measure voice files, extract mouth data and update frame counts",
		Long: `Measure voice files, extract mouth data and update frame counts.

Mouth states are computed over chunks of 48000*playback_rate/fps samples
(1920 at 30 fps and rate 1.2). The template's Python generator used
sample_rate // int(fps*rate) on the native sample rate, so mouth-data.json
written by it has a different number of frames per file. Run sync again
after switching tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if workers < 1 {
				workers = system.DefaultWorkers()
			}

			res, err := voices.Sync(cmd.Context(), proj.Script, voices.Options{
				VoicesDir: proj.VoicesDir(),
				FPS:       proj.Settings.Video.FPS,
				Rate:      proj.Settings.Video.PlaybackRate,
				Workers:   workers,
				Logger:    ctx.logger,
			})
			if err != nil {
				return err
			}
			for _, m := range res.Missing {
				ctx.logger.Warn("Voice file missing", "file", m)
			}

			if err := os.MkdirAll(proj.VoicesDir(), 0755); err != nil {
				return err
			}
			durPath := filepath.Join(proj.VoicesDir(), engine.DurationsFile)
			if err := voices.WriteDurations(durPath, res.Durations); err != nil {
				return err
			}
			if err := res.Mouth.Save(proj.MouthDataPath()); err != nil {
				return err
			}
			fmt.Fprintf(out, "[+] Measured: %d, missing: %d\n", len(res.Durations), len(res.Missing))
			fmt.Fprintf(out, "[+] %s\n[+] %s\n", durPath, proj.MouthDataPath())

			if update {
				changed := voices.Apply(proj.Script, res.Durations)
				if changed > 0 {
					if err := script.WriteScript(proj.Script, proj.ScriptPath); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "[+++] Updated lines: %d in %s\n", changed, proj.ScriptPath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel ffprobe/ffmpeg runs (default: physical cores)")
	cmd.Flags().BoolVar(&update, "update-script", false, "Write the measured duration_frames back into the script")
	return cmd
}
