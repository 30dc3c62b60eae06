// Package mediaexec shells out to ffmpeg and ffprobe for local edit
// execution.
package mediaexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/model"
)

type Runner struct {
	ffmpeg  string
	ffprobe string
	log     *zap.Logger
}

func NewRunner(cfg *config.Config, log *zap.Logger) *Runner {
	return &Runner{
		ffmpeg:  cfg.Sandbox.FFmpegPath,
		ffprobe: cfg.Sandbox.FFprobePath,
		log:     log,
	}
}

// Run executes ffmpeg with the given arguments. ffmpeg writes its
// diagnostics to stderr, so that is what error messages carry.
func (r *Runner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.log.Debug("running ffmpeg", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLines(stderr.String(), 5))
	}
	return nil
}

// probeOutput mirrors the ffprobe -print_format json layout, limited to
// the fields the editor needs.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	BitRate      string `json:"bit_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Probe runs ffprobe against path and returns the parsed media metadata.
func (r *Runner) Probe(ctx context.Context, path string) (*model.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, r.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var parsed probeOutput
	if err := sonic.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return toMediaInfo(parsed), nil
}

func toMediaInfo(p probeOutput) *model.MediaInfo {
	info := &model.MediaInfo{}
	info.Duration, _ = strconv.ParseFloat(p.Format.Duration, 64)
	if br, err := strconv.ParseInt(p.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = br
	}

	for _, s := range p.Streams {
		switch s.CodecType {
		case "video":
			if info.Codec != "" {
				continue
			}
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseFrameRate(s.RFrameRate)
			if info.FPS == 0 {
				info.FPS = parseFrameRate(s.AvgFrameRate)
			}
		case "audio":
			if info.AudioCodec != "" {
				continue
			}
			info.AudioCodec = s.CodecName
			if br, err := strconv.ParseInt(s.BitRate, 10, 64); err == nil {
				info.AudioBitrate = br
			}
		}
	}
	return info
}

// parseFrameRate handles ffprobe's rational notation, e.g. "30000/1001".
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
