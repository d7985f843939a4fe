package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/engine"
	"github.com/ivlev/dialogvideo/internal/subtitle"
	"github.com/ivlev/dialogvideo/internal/system"
	"github.com/ivlev/dialogvideo/internal/video"
)

type renderOptions struct {
	output  string
	preset  string
	width   int
	height  int
	fps     int
	workers int
	encoder string
	quality int
	from    int
	to      int
	stats   bool
	srt     bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the script to an MP4 file",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}

			cfg, err := opts.config(proj)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.OutputVideo), 0755); err != nil {
				return err
			}

			vp := engine.NewVideoProject(cfg, proj, &video.FFmpegEncoder{})
			vp.Logger = ctx.logger
			vp.Out = cmd.OutOrStdout()
			if err := vp.Run(cmd.Context()); err != nil {
				return err
			}

			if opts.srt {
				path := strings.TrimSuffix(cfg.OutputVideo, filepath.Ext(cfg.OutputVideo)) + ".srt"
				if err := subtitle.WriteSRT(path, vp.Subtitles()); err != nil {
					return fmt.Errorf("write subtitles: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[+++] Subtitles: %s\n", path)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Output video (default: output/<script>_<timestamp>.mp4)")
	flags.StringVar(&opts.preset, "preset", "", "Format preset: 16:9, 9:16, 4:5")
	flags.IntVar(&opts.width, "width", 0, "Frame width (default from settings)")
	flags.IntVar(&opts.height, "height", 0, "Frame height (default from settings)")
	flags.IntVar(&opts.fps, "fps", 0, "Frames per second (default from settings)")
	flags.IntVar(&opts.workers, "workers", 0, "Render workers (default: physical cores)")
	flags.StringVar(&opts.encoder, "encoder", "auto", "H.264 encoder: auto, libx264, h264_videotoolbox, h264_nvenc")
	flags.IntVar(&opts.quality, "quality", 0, "Quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	flags.IntVar(&opts.from, "from", 0, "First frame to render")
	flags.IntVar(&opts.to, "to", 0, "Frame to stop at, exclusive (0 - until the end)")
	flags.BoolVar(&opts.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	flags.BoolVar(&opts.srt, "srt", false, "Also write an .srt next to the video")

	return cmd
}

// config turns the flags into a render configuration. Values left at zero
// come from the project settings.
func (o renderOptions) config(proj *engine.Project) (*config.Config, error) {
	width, height := o.width, o.height
	switch o.preset {
	case "":
	case "16:9":
		width, height = 1920, 1080
	case "9:16":
		width, height = 1080, 1920
	case "4:5":
		width, height = 1080, 1350
	default:
		return nil, fmt.Errorf("unknown preset %q", o.preset)
	}
	if o.from < 0 || (o.to > 0 && o.to <= o.from) {
		return nil, fmt.Errorf("invalid frame range %d..%d", o.from, o.to)
	}

	encoder := o.encoder
	if encoder == "" || encoder == "auto" {
		encoder = system.GetBestH264Encoder()
		fmt.Printf("[*] Selected encoder: %s\n", encoder)
	}

	output := o.output
	if output == "" {
		name := strings.TrimSuffix(filepath.Base(proj.ScriptPath), filepath.Ext(proj.ScriptPath))
		output = filepath.Join(proj.Dir, "output", fmt.Sprintf("%s_%s.mp4", name, time.Now().Format("2006-01-02_15-04-05")))
	}

	return &config.Config{
		ProjectDir:   proj.Dir,
		ScriptPath:   proj.ScriptPath,
		OutputVideo:  output,
		Width:        width,
		Height:       height,
		FPS:          o.fps,
		Workers:      o.workers,
		VideoEncoder: encoder,
		Quality:      defaultQuality(encoder, o.quality),
		ShowStats:    o.stats,
		BuildVersion: buildVersion,
		FromFrame:    o.from,
		ToFrame:      o.to,
	}, nil
}

func defaultQuality(encoder string, quality int) int {
	if quality > 0 {
		return quality
	}
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}
