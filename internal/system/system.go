package system

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open file limit; every voice, effect and
// image is an open file while ffmpeg runs.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("Could not read open file limit", "error", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("Could not raise open file limit", "error", err)
		return
	}
	slog.Debug("Open file limit raised", "limit", rLimit.Cur)
}

// GetAudioDuration returns the duration in seconds reported by ffprobe.
func GetAudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("ffprobe %s: unexpected output %q", path, out)
	}
	return duration, nil
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg has one:
// VideoToolbox on macOS, then NVENC, then libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// CheckFilterSupport reports whether the installed ffmpeg knows all the
// named filters.
func CheckFilterSupport(names ...string) error {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg not available: %w", err)
	}
	var missing []string
	for _, n := range names {
		if !hasFilter(string(out), n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("ffmpeg lacks filters: %s", strings.Join(missing, ", "))
	}
	return nil
}

// hasFilter looks for name as the second column of `ffmpeg -filters`.
func hasFilter(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

// DefaultWorkers is the number of physical cores, or logical CPUs when the
// count is unavailable.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// FrameBudget returns how many frames of width x height may be in flight at
// once: a quarter of the available memory, at least two per worker and at
// most 256.
func FrameBudget(width, height, workers int) int {
	minFrames := 2 * workers
	if minFrames < 2 {
		minFrames = 2
	}
	frameBytes := uint64(width) * uint64(height) * 4
	if frameBytes == 0 {
		return minFrames
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return minFrames
	}
	return clampBudget(int(vm.Available/4/frameBytes), minFrames, 256)
}

func clampBudget(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi && hi >= lo {
		return hi
	}
	return n
}
