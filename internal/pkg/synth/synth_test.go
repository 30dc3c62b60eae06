package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
)

func fixedID() string { return "abc123" }

func argOf(t *testing.T, plan Plan, flag string) string {
	t.Helper()
	for i, a := range plan.Args {
		if a == flag && i+1 < len(plan.Args) {
			return plan.Args[i+1]
		}
	}
	t.Fatalf("flag %q not found in %v", flag, plan.Args)
	return ""
}

func TestSynthesizeTrim(t *testing.T) {
	plan, err := Synthesize(catalog.ToolTrim, map[string]any{
		"input_file": "clip.mp4", "start_time": "00:00:05", "end_time": "00:00:10",
	}, Inputs{Primary: "/sbx/input/clip.mp4"}, "/sbx/output", fixedID)
	require.NoError(t, err)

	assert.Equal(t, "trim_abc123.mp4", plan.OutputName)
	assert.Equal(t, "00:00:05", argOf(t, plan, "-ss"))
	assert.Equal(t, "00:00:10", argOf(t, plan, "-to"))
	assert.Equal(t, "copy", argOf(t, plan, "-c"))
	assert.Equal(t, filepath.Join("/sbx/output", plan.OutputName), plan.OutputPath)
}

func TestSynthesizeSpeedInverts(t *testing.T) {
	plan, err := Synthesize(catalog.ToolSpeed, map[string]any{
		"input_file": "clip.mp4", "multiplier": 2.0,
	}, Inputs{Primary: "/sbx/input/clip.mp4"}, "/sbx/output", fixedID)
	require.NoError(t, err)

	graph := argOf(t, plan, "-filter_complex")
	assert.Contains(t, graph, "setpts=0.500000*PTS")
	assert.Contains(t, graph, "atempo=2.000000")
}

func TestAtempoChainStaysInRange(t *testing.T) {
	for _, tempo := range []float64{0.25, 0.5, 1.0, 3.0, 8.0} {
		chain := atempoChain(tempo)
		for _, part := range strings.Split(chain, ",") {
			var v float64
			_, err := fmt.Sscanf(part, "atempo=%f", &v)
			require.NoError(t, err, "tempo %v chain %q", tempo, chain)
			assert.GreaterOrEqual(t, v, 0.5)
			assert.LessOrEqual(t, v, 2.0)
		}
	}
}

func TestSynthesizeZoomPanIncrement(t *testing.T) {
	info := &model.MediaInfo{Duration: 10, Width: 1920, Height: 1080, FPS: 25}
	plan, err := Synthesize(catalog.ToolZoomPan, map[string]any{
		"input_file": "clip.mp4", "direction": "in", "amount": 1.5, "duration": 10.0,
	}, Inputs{Primary: "/sbx/input/clip.mp4", Info: info}, "/sbx/output", fixedID)
	require.NoError(t, err)

	// (1.5 - 1) / (10 * 25) = 0.002
	vf := argOf(t, plan, "-vf")
	assert.Contains(t, vf, "zoom+0.002000")
	assert.Contains(t, vf, "s=1920x1080")
}

func TestSynthesizeZoomPanNeedsProbe(t *testing.T) {
	_, err := Synthesize(catalog.ToolZoomPan, map[string]any{
		"input_file": "clip.mp4", "direction": "in",
	}, Inputs{Primary: "/sbx/input/clip.mp4"}, "/sbx/output", fixedID)
	assert.ErrorIs(t, err, ErrMediaProperties)
}

func TestSynthesizeTransitionOffset(t *testing.T) {
	info := &model.MediaInfo{Duration: 8}
	plan, err := Synthesize(catalog.ToolTransition, map[string]any{
		"first_file": "a.mp4", "second_file": "b.mp4", "type": "fade", "duration": 1.5,
	}, Inputs{Primary: "/sbx/input/a.mp4", Secondary: "/sbx/input/b.mp4", Info: info}, "/sbx/output", fixedID)
	require.NoError(t, err)

	graph := argOf(t, plan, "-filter_complex")
	// offset = 8 - 1.5
	assert.Contains(t, graph, "offset=6.500")
	assert.Contains(t, graph, "transition=fade")
	assert.Contains(t, graph, "acrossfade=d=1.500")
}

func TestSynthesizeTransitionNeedsDuration(t *testing.T) {
	_, err := Synthesize(catalog.ToolTransition, map[string]any{
		"first_file": "a.mp4", "second_file": "b.mp4", "type": "fade",
	}, Inputs{Primary: "/a.mp4", Secondary: "/b.mp4"}, "/sbx/output", fixedID)
	assert.ErrorIs(t, err, ErrMediaProperties)
}

func TestSynthesizeConcatManifest(t *testing.T) {
	dir := t.TempDir()
	plan, err := Synthesize(catalog.ToolConcat, map[string]any{
		"input_files": []any{"a.mp4", "b.mp4"},
	}, Inputs{List: []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4")}}, dir, fixedID)
	require.NoError(t, err)
	require.NotNil(t, plan.Manifest)

	body, err := os.ReadFile(plan.Manifest.Path())
	require.NoError(t, err)
	assert.Equal(t,
		fmt.Sprintf("file '%s'\nfile '%s'\n", filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4")),
		string(body))

	require.NoError(t, plan.Manifest.Close())
	_, err = os.Stat(plan.Manifest.Path())
	assert.True(t, os.IsNotExist(err))

	// closing twice is a no-op
	assert.NoError(t, plan.Manifest.Close())
}

func TestSynthesizeAudioActions(t *testing.T) {
	cases := []struct {
		action string
		extra  map[string]any
		sec    string
		want   []string
	}{
		{"mute", nil, "", []string{"-an"}},
		{"volume", map[string]any{"value": 0.5}, "", []string{"-af", "volume=0.500"}},
		{"extract", nil, "", []string{"-vn", "-acodec"}},
		{"replace", map[string]any{"audio_file": "t.mp3"}, "/sbx/input/t.mp3", []string{"-shortest", "-map"}},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			args := map[string]any{"input_file": "clip.mp4", "action": tc.action}
			for k, v := range tc.extra {
				args[k] = v
			}
			plan, err := Synthesize(catalog.ToolAudio, args,
				Inputs{Primary: "/sbx/input/clip.mp4", Secondary: tc.sec}, "/sbx/output", fixedID)
			require.NoError(t, err)
			for _, w := range tc.want {
				assert.Contains(t, plan.Args, w)
			}
		})
	}

	_, err := Synthesize(catalog.ToolAudio, map[string]any{
		"input_file": "clip.mp4", "action": "extract",
	}, Inputs{Primary: "/sbx/input/clip.mp4"}, "/sbx/output", fixedID)
	require.NoError(t, err)
}

func TestSynthesizeAudioExtractIsMP3(t *testing.T) {
	plan, err := Synthesize(catalog.ToolAudio, map[string]any{
		"input_file": "clip.mp4", "action": "extract",
	}, Inputs{Primary: "/sbx/input/clip.mp4"}, "/sbx/output", fixedID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(plan.OutputName, ".mp3"), plan.OutputName)
}

func TestSynthesizeOverlayPositions(t *testing.T) {
	plan, err := Synthesize(catalog.ToolOverlay, map[string]any{
		"base_file": "a.mp4", "overlay_file": "logo.png", "position": "bottom_right",
	}, Inputs{Primary: "/sbx/input/a.mp4", Secondary: "/sbx/input/logo.png"}, "/sbx/output", fixedID)
	require.NoError(t, err)

	graph := argOf(t, plan, "-filter_complex")
	assert.Contains(t, graph, "overlay=main_w-overlay_w-10:main_h-overlay_h-10")
	assert.NotContains(t, graph, "enable=")
}

func TestSynthesizeOverlayWindow(t *testing.T) {
	plan, err := Synthesize(catalog.ToolOverlay, map[string]any{
		"base_file": "a.mp4", "overlay_file": "logo.png", "position": "center",
		"start_time": 2.0, "end_time": 5.0,
	}, Inputs{Primary: "/a.mp4", Secondary: "/logo.png"}, "/sbx/output", fixedID)
	require.NoError(t, err)

	graph := argOf(t, plan, "-filter_complex")
	assert.Contains(t, graph, "enable='between(t,2.000,5.000)'")
}

func TestSynthesizeTextEscapes(t *testing.T) {
	plan, err := Synthesize(catalog.ToolText, map[string]any{
		"input_file": "a.mp4", "text": "It's 100%: done",
	}, Inputs{Primary: "/a.mp4"}, "/sbx/output", fixedID)
	require.NoError(t, err)

	vf := argOf(t, plan, "-vf")
	assert.Contains(t, vf, `It\'s 100\%\: done`)
	assert.Contains(t, vf, "x=(w-text_w)/2")
	assert.Contains(t, vf, "fontsize=36")
}

func TestSynthesizeFilterExprs(t *testing.T) {
	for _, name := range catalog.FilterNames {
		plan, err := Synthesize(catalog.ToolFilter, map[string]any{
			"input_file": "a.mp4", "filter_name": name, "intensity": 1.2,
		}, Inputs{Primary: "/a.mp4"}, "/sbx/output", fixedID)
		require.NoError(t, err, name)
		assert.NotEmpty(t, argOf(t, plan, "-vf"))
	}
}

func TestSynthesizeReadOnlyTools(t *testing.T) {
	for _, name := range []string{catalog.ToolProbe, catalog.ToolListSandbox} {
		_, err := Synthesize(name, nil, Inputs{}, "/sbx/output", fixedID)
		assert.ErrorIs(t, err, ErrReadOnlyTool, name)
	}
}
