package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsComplete(t *testing.T) {
	want := []string{
		ToolTrim, ToolConcat, ToolFilter, ToolScale, ToolSpeed, ToolAudio,
		ToolCrop, ToolOverlay, ToolTransition, ToolText, ToolZoomPan,
		ToolProbe, ToolListSandbox,
	}

	got := make([]string, 0, len(List()))
	for _, s := range List() {
		got = append(got, s.Name)
	}
	assert.Equal(t, want, got)
}

func TestValidateAcceptsValidArgs(t *testing.T) {
	tests := []struct {
		tool string
		args map[string]any
	}{
		{ToolTrim, map[string]any{"input_file": "input/beach.mp4", "start_time": "0", "end_time": "10"}},
		{ToolConcat, map[string]any{"input_files": []any{"input/a.mp4", "input/b.mp4"}}},
		{ToolFilter, map[string]any{"input_file": "input/a.mp4", "filter_name": "brightness", "intensity": 1.4}},
		{ToolScale, map[string]any{"input_file": "input/a.mp4", "width": float64(1280), "height": float64(-1)}},
		{ToolSpeed, map[string]any{"input_file": "input/a.mp4", "multiplier": 2.0}},
		{ToolAudio, map[string]any{"input_file": "input/a.mp4", "action": "mute"}},
		{ToolTransition, map[string]any{"first_file": "input/a.mp4", "second_file": "input/b.mp4", "type": "fade", "duration": 1.5}},
		{ToolZoomPan, map[string]any{"input_file": "input/a.mp4", "direction": "in"}},
		{ToolListSandbox, map[string]any{}},
	}

	for _, tt := range tests {
		spec, ok := Get(tt.tool)
		require.True(t, ok, tt.tool)
		assert.Empty(t, Validate(spec, tt.args), tt.tool)
	}
}

func TestValidateNamesMissingField(t *testing.T) {
	spec, _ := Get(ToolTrim)

	errs := Validate(spec, map[string]any{"input_file": "input/beach.mp4", "start_time": "0"})
	require.Len(t, errs, 1)
	assert.Equal(t, "end_time", errs[0].Field)
	assert.Contains(t, errs[0].Reason, "missing")
}

func TestValidateNamesWrongType(t *testing.T) {
	spec, _ := Get(ToolSpeed)

	errs := Validate(spec, map[string]any{"input_file": "input/a.mp4", "multiplier": "fast"})
	require.Len(t, errs, 1)
	assert.Equal(t, "multiplier", errs[0].Field)
}

func TestValidateRejectsUnknownEnumValue(t *testing.T) {
	spec, _ := Get(ToolFilter)

	errs := Validate(spec, map[string]any{"input_file": "input/a.mp4", "filter_name": "posterize"})
	require.Len(t, errs, 1)
	assert.Equal(t, "filter_name", errs[0].Field)

	spec, _ = Get(ToolTransition)
	errs = Validate(spec, map[string]any{"first_file": "a", "second_file": "b", "type": "swirl"})
	require.Len(t, errs, 1)
	assert.Equal(t, "type", errs[0].Field)
}

func TestValidateRejectsEmptyConcatList(t *testing.T) {
	spec, _ := Get(ToolConcat)

	errs := Validate(spec, map[string]any{"input_files": []any{}})
	require.Len(t, errs, 1)
	assert.Equal(t, "input_files", errs[0].Field)
}

func TestInputSchemaShape(t *testing.T) {
	spec, _ := Get(ToolFilter)
	schema := spec.InputSchema()

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	filterProp, ok := props["filter_name"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, FilterNames, filterProp["enum"])

	assert.ElementsMatch(t, []string{"input_file", "filter_name"}, schema["required"])
}
