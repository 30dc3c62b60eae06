// Package synth maps validated tool invocations onto concrete ffmpeg
// invocations. Synthesis is deterministic apart from the injected ID source
// used for output-name uniqueness: each call produces a fresh output name,
// so no invocation ever overwrites an existing artifact.
package synth

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
)

var (
	// ErrMediaProperties is returned when a tool needs probed metadata
	// (duration, frame rate, dimensions) that is missing or unusable.
	ErrMediaProperties = errors.New("could not determine media properties")

	// ErrReadOnlyTool is returned for probe/list_sandbox, which the backend
	// answers without running ffmpeg.
	ErrReadOnlyTool = errors.New("tool is read-only; nothing to synthesize")
)

// IDSource supplies the uniqueness component of output names.
type IDSource func() string

// DefaultIDSource derives a short id from a fresh UUID.
func DefaultIDSource() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Inputs carries the resolved local paths (and probe data where required)
// for one invocation. The backend resolves references before calling in.
type Inputs struct {
	Primary   string   // main input path
	Secondary string   // overlay source, replacement audio, or second clip
	List      []string // ordered concat inputs

	// Info is the probe result of Primary (zoompan) or of the first clip
	// (transition).
	Info *model.MediaInfo
}

// Plan is a synthesized ffmpeg invocation. Args excludes the binary name.
// OutputPath is embedded in Args; Manifest is non-nil only for concat and
// must be closed by the executor regardless of the run's outcome.
type Plan struct {
	Args       []string
	OutputName string
	OutputPath string
	Manifest   *Manifest
}

// Synthesize builds the ffmpeg invocation for one tool call. args must have
// passed catalog.Validate for the tool's spec; outDir is the sandbox output
// area the artifact will land in.
func Synthesize(tool string, args map[string]any, in Inputs, outDir string, id IDSource) (Plan, error) {
	if id == nil {
		id = DefaultIDSource
	}
	if catalog.ReadOnly(tool) {
		return Plan{}, ErrReadOnlyTool
	}

	out := func(ext string) (string, string) {
		name := fmt.Sprintf("%s_%s%s", tool, id(), ext)
		return name, filepath.Join(outDir, name)
	}

	switch tool {
	case catalog.ToolTrim:
		return synthTrim(args, in, out)
	case catalog.ToolConcat:
		return synthConcat(in, outDir, out)
	case catalog.ToolFilter:
		return synthFilter(args, in, out)
	case catalog.ToolScale:
		return synthScale(args, in, out)
	case catalog.ToolSpeed:
		return synthSpeed(args, in, out)
	case catalog.ToolAudio:
		return synthAudio(args, in, out)
	case catalog.ToolCrop:
		return synthCrop(args, in, out)
	case catalog.ToolOverlay:
		return synthOverlay(args, in, out)
	case catalog.ToolTransition:
		return synthTransition(args, in, out)
	case catalog.ToolText:
		return synthText(args, in, out)
	case catalog.ToolZoomPan:
		return synthZoomPan(args, in, out)
	default:
		return Plan{}, fmt.Errorf("unknown tool %q", tool)
	}
}

type outFunc func(ext string) (name, path string)

func extOf(path string) string {
	if e := filepath.Ext(path); e != "" {
		return e
	}
	return ".mp4"
}

// trim copies streams instead of re-encoding; keyframe-boundary trimming is
// acceptable here and keeps the operation near-instant.
func synthTrim(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	start := catalog.ArgString(args, "start_time", "0")
	end := catalog.ArgString(args, "end_time", "")
	name, path := out(extOf(in.Primary))
	return Plan{
		Args: []string{
			"-y", "-ss", start, "-to", end,
			"-i", in.Primary,
			"-c", "copy",
			path,
		},
		OutputName: name,
		OutputPath: path,
	}, nil
}

func synthConcat(in Inputs, outDir string, out outFunc) (Plan, error) {
	if len(in.List) < 2 {
		return Plan{}, fmt.Errorf("concat needs at least two inputs, got %d", len(in.List))
	}
	manifest, err := NewManifest(outDir, in.List)
	if err != nil {
		return Plan{}, fmt.Errorf("write concat manifest: %w", err)
	}
	name, path := out(extOf(in.List[0]))
	return Plan{
		Args: []string{
			"-y", "-f", "concat", "-safe", "0",
			"-i", manifest.Path(),
			"-c", "copy",
			path,
		},
		OutputName: name,
		OutputPath: path,
		Manifest:   manifest,
	}, nil
}

func synthFilter(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	filterName := catalog.ArgString(args, "filter_name", "")
	intensity := catalog.ArgNumber(args, "intensity", 1.0)

	expr, err := filterExpr(filterName, intensity)
	if err != nil {
		return Plan{}, err
	}

	name, path := out(extOf(in.Primary))
	return Plan{
		Args:       []string{"-y", "-i", in.Primary, "-vf", expr, "-c:a", "copy", path},
		OutputName: name,
		OutputPath: path,
	}, nil
}

// filterExpr maps a catalog effect name onto an ffmpeg video filter string.
func filterExpr(filterName string, intensity float64) (string, error) {
	switch filterName {
	case "brightness":
		// eq brightness is additive around 0; map intensity 1.0 -> 0.
		return fmt.Sprintf("eq=brightness=%.3f", (intensity-1.0)*0.5), nil
	case "contrast":
		return fmt.Sprintf("eq=contrast=%.3f", intensity), nil
	case "saturation":
		return fmt.Sprintf("eq=saturation=%.3f", intensity), nil
	case "blur":
		return fmt.Sprintf("boxblur=%.2f", 2.0*intensity), nil
	case "sharpen":
		return fmt.Sprintf("unsharp=5:5:%.2f", intensity), nil
	case "grayscale":
		return "hue=s=0", nil
	case "sepia":
		return "colorchannelmixer=.393:.769:.189:0:.349:.686:.168:0:.272:.534:.131", nil
	case "vignette":
		return fmt.Sprintf("vignette=PI/4*%.2f", intensity), nil
	default:
		return "", fmt.Errorf("unknown filter %q", filterName)
	}
}

func synthScale(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	w := int(catalog.ArgNumber(args, "width", -1))
	h := int(catalog.ArgNumber(args, "height", -1))
	name, path := out(extOf(in.Primary))
	return Plan{
		Args: []string{
			"-y", "-i", in.Primary,
			"-vf", fmt.Sprintf("scale=%d:%d", w, h),
			"-c:a", "copy",
			path,
		},
		OutputName: name,
		OutputPath: path,
	}, nil
}

// speed scales video timestamps by 1/multiplier and audio tempo by the
// multiplier itself; the two are inverses of each other and must not be
// conflated.
func synthSpeed(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	mult := catalog.ArgNumber(args, "multiplier", 1.0)
	if mult <= 0 {
		return Plan{}, fmt.Errorf("speed multiplier must be positive, got %v", mult)
	}

	name, path := out(extOf(in.Primary))
	graph := fmt.Sprintf("[0:v]setpts=%.6f*PTS[v];[0:a]%s[a]", 1.0/mult, atempoChain(mult))
	return Plan{
		Args: []string{
			"-y", "-i", in.Primary,
			"-filter_complex", graph,
			"-map", "[v]", "-map", "[a]",
			path,
		},
		OutputName: name,
		OutputPath: path,
	}, nil
}

// atempoChain expresses an arbitrary tempo factor as a chain of atempo
// filters, each within ffmpeg's legal 0.5..2.0 range.
func atempoChain(tempo float64) string {
	var parts []string
	for tempo > 2.0 {
		parts = append(parts, "atempo=2.0")
		tempo /= 2.0
	}
	for tempo < 0.5 {
		parts = append(parts, "atempo=0.5")
		tempo /= 0.5
	}
	parts = append(parts, fmt.Sprintf("atempo=%.6f", tempo))
	return strings.Join(parts, ",")
}

func synthAudio(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	action := catalog.ArgString(args, "action", "")
	switch action {
	case "mute":
		// Strip the audio stream only; video is copied untouched.
		name, path := out(extOf(in.Primary))
		return Plan{
			Args:       []string{"-y", "-i", in.Primary, "-c:v", "copy", "-an", path},
			OutputName: name,
			OutputPath: path,
		}, nil
	case "volume":
		gain := catalog.ArgNumber(args, "value", 1.0)
		name, path := out(extOf(in.Primary))
		return Plan{
			Args: []string{
				"-y", "-i", in.Primary,
				"-c:v", "copy",
				"-af", fmt.Sprintf("volume=%.3f", gain),
				path,
			},
			OutputName: name,
			OutputPath: path,
		}, nil
	case "extract":
		name, path := out(".mp3")
		return Plan{
			Args:       []string{"-y", "-i", in.Primary, "-vn", "-acodec", "libmp3lame", path},
			OutputName: name,
			OutputPath: path,
		}, nil
	case "replace":
		if in.Secondary == "" {
			return Plan{}, errors.New("audio replace requires audio_file")
		}
		// Video from input 0, audio from input 1, truncated to the shorter.
		name, path := out(extOf(in.Primary))
		return Plan{
			Args: []string{
				"-y", "-i", in.Primary, "-i", in.Secondary,
				"-map", "0:v:0", "-map", "1:a:0",
				"-c:v", "copy",
				"-shortest",
				path,
			},
			OutputName: name,
			OutputPath: path,
		}, nil
	default:
		return Plan{}, fmt.Errorf("unknown audio action %q", action)
	}
}

func synthCrop(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	w := int(catalog.ArgNumber(args, "width", 0))
	h := int(catalog.ArgNumber(args, "height", 0))
	x := int(catalog.ArgNumber(args, "x", 0))
	y := int(catalog.ArgNumber(args, "y", 0))
	if w <= 0 || h <= 0 {
		return Plan{}, fmt.Errorf("crop needs positive width and height, got %dx%d", w, h)
	}
	name, path := out(extOf(in.Primary))
	return Plan{
		Args: []string{
			"-y", "-i", in.Primary,
			"-vf", fmt.Sprintf("crop=%d:%d:%d:%d", w, h, x, y),
			"-c:a", "copy",
			path,
		},
		OutputName: name,
		OutputPath: path,
	}, nil
}

var overlayCoords = map[string]string{
	"top_left":     "10:10",
	"top_right":    "main_w-overlay_w-10:10",
	"bottom_left":  "10:main_h-overlay_h-10",
	"bottom_right": "main_w-overlay_w-10:main_h-overlay_h-10",
	"center":       "(main_w-overlay_w)/2:(main_h-overlay_h)/2",
}

func synthOverlay(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	if in.Secondary == "" {
		return Plan{}, errors.New("overlay requires overlay_file")
	}
	coords, ok := overlayCoords[catalog.ArgString(args, "position", "top_left")]
	if !ok {
		coords = overlayCoords["top_left"]
	}

	expr := fmt.Sprintf("[0:v][1:v]overlay=%s", coords)
	if window := enableWindow(args); window != "" {
		expr += ":" + window
	}
	expr += "[v]"

	name, path := out(extOf(in.Primary))
	return Plan{
		Args: []string{
			"-y", "-i", in.Primary, "-i", in.Secondary,
			"-filter_complex", expr,
			"-map", "[v]", "-map", "0:a?",
			"-c:a", "copy",
			path,
		},
		OutputName: name,
		OutputPath: path,
	}, nil
}

// enableWindow renders the "enabled between start and end" predicate shared
// by overlay and text. Empty when no window was given: the effect then
// applies for the whole duration.
func enableWindow(args map[string]any) string {
	if !catalog.HasArg(args, "start_time") && !catalog.HasArg(args, "end_time") {
		return ""
	}
	start := catalog.ArgNumber(args, "start_time", 0)
	end := catalog.ArgNumber(args, "end_time", 1e9)
	return fmt.Sprintf("enable='between(t,%.3f,%.3f)'", start, end)
}

// xfadeNames maps catalog transition types onto ffmpeg xfade transitions.
var xfadeNames = map[string]string{
	"fade":     "fade",
	"wipe":     "wipeleft",
	"dissolve": "dissolve",
	"zoom":     "zoomin",
}

// transition places the cross-effect window at duration1 - transitionDuration,
// which requires the first clip's probed duration.
func synthTransition(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	if in.Secondary == "" {
		return Plan{}, errors.New("transition requires second_file")
	}
	kind, ok := xfadeNames[catalog.ArgString(args, "type", "")]
	if !ok {
		return Plan{}, fmt.Errorf("unknown transition %q", catalog.ArgString(args, "type", ""))
	}
	if in.Info == nil || in.Info.Duration <= 0 {
		return Plan{}, fmt.Errorf("transition: %w", ErrMediaProperties)
	}

	dur := catalog.ArgNumber(args, "duration", 1.0)
	if dur <= 0 {
		dur = 1.0
	}
	offset := in.Info.Duration - dur
	if offset < 0 {
		offset = 0
	}

	graph := fmt.Sprintf(
		"[0:v][1:v]xfade=transition=%s:duration=%.3f:offset=%.3f[v];[0:a][1:a]acrossfade=d=%.3f[a]",
		kind, dur, offset, dur,
	)
	name, path := out(extOf(in.Primary))
	return Plan{
		Args: []string{
			"-y", "-i", in.Primary, "-i", in.Secondary,
			"-filter_complex", graph,
			"-map", "[v]", "-map", "[a]",
			path,
		},
		OutputName: name,
		OutputPath: path,
	}, nil
}

func synthText(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	text := catalog.ArgString(args, "text", "")
	if text == "" {
		return Plan{}, errors.New("text requires a non-empty string")
	}

	x := catalog.ArgString(args, "x", "(w-text_w)/2")
	y := catalog.ArgString(args, "y", "(h-text_h)/2")
	size := int(catalog.ArgNumber(args, "font_size", 36))
	color := catalog.ArgString(args, "font_color", "white")

	expr := fmt.Sprintf(
		"drawtext=text='%s':x=%s:y=%s:fontsize=%d:fontcolor=%s",
		escapeDrawtext(text), x, y, size, color,
	)
	if window := enableWindow(args); window != "" {
		expr += ":" + window
	}

	name, path := out(extOf(in.Primary))
	return Plan{
		Args:       []string{"-y", "-i", in.Primary, "-vf", expr, "-c:a", "copy", path},
		OutputName: name,
		OutputPath: path,
	}, nil
}

// escapeDrawtext escapes the characters drawtext treats specially.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return s
}

// zoompan ramps the zoom by (target-1)/(duration*fps) per frame: direction
// "in" climbs from 1 toward the target, "out" descends from the target.
func synthZoomPan(args map[string]any, in Inputs, out outFunc) (Plan, error) {
	if in.Info == nil || in.Info.FPS <= 0 || in.Info.Width <= 0 || in.Info.Height <= 0 {
		return Plan{}, fmt.Errorf("zoompan: %w", ErrMediaProperties)
	}

	target := catalog.ArgNumber(args, "amount", 1.3)
	if target <= 1.0 {
		target = 1.3
	}
	duration := catalog.ArgNumber(args, "duration", in.Info.Duration)
	if duration <= 0 {
		if in.Info.Duration <= 0 {
			return Plan{}, fmt.Errorf("zoompan: %w", ErrMediaProperties)
		}
		duration = in.Info.Duration
	}

	increment := (target - 1.0) / (duration * in.Info.FPS)

	var zoomExpr string
	switch catalog.ArgString(args, "direction", "in") {
	case "out":
		zoomExpr = fmt.Sprintf("if(lte(zoom,1.0),%.3f,max(1.001,zoom-%.6f))", target, increment)
	default:
		zoomExpr = fmt.Sprintf("min(zoom+%.6f,%.3f)", increment, target)
	}

	expr := fmt.Sprintf(
		"zoompan=z='%s':d=1:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%dx%d:fps=%.2f",
		zoomExpr, in.Info.Width, in.Info.Height, in.Info.FPS,
	)

	name, path := out(extOf(in.Primary))
	return Plan{
		Args:       []string{"-y", "-i", in.Primary, "-vf", expr, "-c:a", "copy", path},
		OutputName: name,
		OutputPath: path,
	}, nil
}
