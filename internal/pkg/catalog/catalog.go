// Package catalog is the fixed registry of video-editing operations the
// model may invoke. Both the model-facing prompt and the execution backends
// consume the same specs, so parameter names and enums here are the single
// source of truth for the tool protocol.
package catalog

// ---------------------------------------------------------------------------
// Parameter types
// ---------------------------------------------------------------------------

// ParamType enumerates the JSON-compatible parameter types a tool may declare.
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeNumber      ParamType = "number"
	TypeBoolean     ParamType = "boolean"
	TypeStringArray ParamType = "string_array"
	TypeEnum        ParamType = "enum"
)

// Param describes one parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Enum        []string // allowed values when Type == TypeEnum
	Description string
}

// ToolSpec is one catalog entry. Descriptions are used verbatim in the
// model-facing prompt.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// ToolCall is a single invocation request proposed by the model.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ---------------------------------------------------------------------------
// Tool names
// ---------------------------------------------------------------------------

const (
	ToolTrim        = "trim"
	ToolConcat      = "concat"
	ToolFilter      = "filter"
	ToolScale       = "scale"
	ToolSpeed       = "speed"
	ToolAudio       = "audio"
	ToolCrop        = "crop"
	ToolOverlay     = "overlay"
	ToolTransition  = "transition"
	ToolText        = "text"
	ToolZoomPan     = "zoompan"
	ToolProbe       = "probe"
	ToolListSandbox = "list_sandbox"
)

// FilterNames are the effects accepted by the filter tool.
var FilterNames = []string{
	"brightness", "contrast", "saturation", "blur",
	"sharpen", "grayscale", "sepia", "vignette",
}

// TransitionTypes are the cross-effects accepted by the transition tool.
var TransitionTypes = []string{"fade", "wipe", "dissolve", "zoom"}

// OverlayPositions are the placements accepted by the overlay tool.
var OverlayPositions = []string{
	"top_left", "top_right", "bottom_left", "bottom_right", "center",
}

var specs = []ToolSpec{
	{
		Name:        ToolTrim,
		Description: "Cut a clip out of a video between two timestamps without re-encoding. Timestamps are seconds or HH:MM:SS strings.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to trim."},
			{Name: "start_time", Type: TypeString, Required: true, Description: "Start timestamp, e.g. '0' or '00:00:10'."},
			{Name: "end_time", Type: TypeString, Required: true, Description: "End timestamp, e.g. '10' or '00:01:30'."},
		},
	},
	{
		Name:        ToolConcat,
		Description: "Join multiple video files into one, in the given order.",
		Params: []Param{
			{Name: "input_files", Type: TypeStringArray, Required: true, Description: "Ordered list of files to join."},
		},
	},
	{
		Name:        ToolFilter,
		Description: "Apply a visual effect to the whole video.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to process."},
			{Name: "filter_name", Type: TypeEnum, Required: true, Enum: FilterNames, Description: "Effect to apply."},
			{Name: "intensity", Type: TypeNumber, Required: false, Description: "Effect strength; 1.0 is the default strength."},
		},
	},
	{
		Name:        ToolScale,
		Description: "Resize the video. Use -1 for width or height to preserve the aspect ratio.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to resize."},
			{Name: "width", Type: TypeNumber, Required: true, Description: "Target width in pixels, or -1."},
			{Name: "height", Type: TypeNumber, Required: true, Description: "Target height in pixels, or -1."},
		},
	},
	{
		Name:        ToolSpeed,
		Description: "Change playback speed. 2 plays twice as fast, 0.5 at half speed. Audio pitch is preserved.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to retime."},
			{Name: "multiplier", Type: TypeNumber, Required: true, Description: "Speed multiplier, e.g. 2 or 0.5."},
		},
	},
	{
		Name:        ToolAudio,
		Description: "Audio operations: mute the track, scale its volume, extract it to an audio file, or replace it with another file's audio.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "Video file to operate on."},
			{Name: "action", Type: TypeEnum, Required: true, Enum: []string{"mute", "volume", "extract", "replace"}, Description: "Audio operation."},
			{Name: "value", Type: TypeNumber, Required: false, Description: "Volume gain for 'volume'; 1.0 leaves it unchanged."},
			{Name: "audio_file", Type: TypeString, Required: false, Description: "Replacement audio source for 'replace'."},
		},
	},
	{
		Name:        ToolCrop,
		Description: "Crop a rectangular region out of the video frame.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to crop."},
			{Name: "width", Type: TypeNumber, Required: true, Description: "Crop width in pixels."},
			{Name: "height", Type: TypeNumber, Required: true, Description: "Crop height in pixels."},
			{Name: "x", Type: TypeNumber, Required: true, Description: "Left edge of the crop region."},
			{Name: "y", Type: TypeNumber, Required: true, Description: "Top edge of the crop region."},
		},
	},
	{
		Name:        ToolOverlay,
		Description: "Overlay an image or video on top of a base video, optionally only during a time window.",
		Params: []Param{
			{Name: "base_file", Type: TypeString, Required: true, Description: "Base video."},
			{Name: "overlay_file", Type: TypeString, Required: true, Description: "Image or video to place on top."},
			{Name: "position", Type: TypeEnum, Required: false, Enum: OverlayPositions, Description: "Placement; defaults to top_left."},
			{Name: "start_time", Type: TypeNumber, Required: false, Description: "Window start in seconds; omit for the whole duration."},
			{Name: "end_time", Type: TypeNumber, Required: false, Description: "Window end in seconds."},
		},
	},
	{
		Name:        ToolTransition,
		Description: "Join two videos with a transition effect between them.",
		Params: []Param{
			{Name: "first_file", Type: TypeString, Required: true, Description: "Video played first."},
			{Name: "second_file", Type: TypeString, Required: true, Description: "Video played second."},
			{Name: "type", Type: TypeEnum, Required: true, Enum: TransitionTypes, Description: "Transition effect."},
			{Name: "duration", Type: TypeNumber, Required: false, Description: "Transition length in seconds; defaults to 1."},
		},
	},
	{
		Name:        ToolText,
		Description: "Draw text on the video. Positions may be pixel numbers or centering expressions like '(w-text_w)/2'.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to annotate."},
			{Name: "text", Type: TypeString, Required: true, Description: "Text to draw."},
			{Name: "x", Type: TypeString, Required: false, Description: "Horizontal position; defaults to centered."},
			{Name: "y", Type: TypeString, Required: false, Description: "Vertical position; defaults to centered."},
			{Name: "font_size", Type: TypeNumber, Required: false, Description: "Font size in points; defaults to 36."},
			{Name: "font_color", Type: TypeString, Required: false, Description: "Color name or hex; defaults to white."},
			{Name: "start_time", Type: TypeNumber, Required: false, Description: "Window start in seconds; omit for the whole duration."},
			{Name: "end_time", Type: TypeNumber, Required: false, Description: "Window end in seconds."},
		},
	},
	{
		Name:        ToolZoomPan,
		Description: "Ken Burns style slow zoom over the clip's duration.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to process."},
			{Name: "direction", Type: TypeEnum, Required: true, Enum: []string{"in", "out"}, Description: "Zoom in or out."},
			{Name: "amount", Type: TypeNumber, Required: false, Description: "Target zoom factor; defaults to 1.3."},
			{Name: "duration", Type: TypeNumber, Required: false, Description: "Effect duration in seconds; defaults to the clip duration."},
		},
	},
	{
		Name:        ToolProbe,
		Description: "Read media information (duration, resolution, codecs, frame rate) without modifying anything.",
		Params: []Param{
			{Name: "input_file", Type: TypeString, Required: true, Description: "File to inspect."},
		},
	},
	{
		Name:        ToolListSandbox,
		Description: "List the files currently in the project's input and output areas.",
		Params:      []Param{},
	},
}

// List returns the full catalog in its fixed order.
func List() []ToolSpec { return specs }

// Get looks up a spec by tool name.
func Get(name string) (ToolSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return ToolSpec{}, false
}

// ReadOnly reports whether a tool only inspects state.
func ReadOnly(name string) bool {
	return name == ToolProbe || name == ToolListSandbox
}

var pathArgs = map[string][]string{
	ToolTrim:       {"input_file"},
	ToolFilter:     {"input_file"},
	ToolScale:      {"input_file"},
	ToolSpeed:      {"input_file"},
	ToolCrop:       {"input_file"},
	ToolText:       {"input_file"},
	ToolZoomPan:    {"input_file"},
	ToolProbe:      {"input_file"},
	ToolAudio:      {"input_file", "audio_file"},
	ToolOverlay:    {"base_file", "overlay_file"},
	ToolTransition: {"first_file", "second_file"},
}

// PathArgs lists the parameters of a tool that name media files, the main
// input first. Concat is the exception: its files arrive as the
// input_files array.
func PathArgs(name string) []string {
	return pathArgs[name]
}
