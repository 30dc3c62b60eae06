package mediaexec

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.01)
	assert.Equal(t, 25.0, parseFrameRate("25/1"))
	assert.Equal(t, 24.0, parseFrameRate("24"))
	assert.Equal(t, 0.0, parseFrameRate("0/0"))
	assert.Equal(t, 0.0, parseFrameRate("garbage"))
}

func TestToMediaInfo(t *testing.T) {
	raw := `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac", "bit_rate": "128000"}
		],
		"format": {"duration": "12.480000", "bit_rate": "2500000"}
	}`
	var parsed probeOutput
	require.NoError(t, sonic.Unmarshal([]byte(raw), &parsed))

	info := toMediaInfo(parsed)
	assert.InDelta(t, 12.48, info.Duration, 0.001)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, "aac", info.AudioCodec)
	assert.Equal(t, int64(128000), info.AudioBitrate)
	assert.Equal(t, int64(2500000), info.Bitrate)
}

func TestToMediaInfoAudioOnly(t *testing.T) {
	raw := `{
		"streams": [{"codec_type": "audio", "codec_name": "mp3", "bit_rate": "192000"}],
		"format": {"duration": "30.0"}
	}`
	var parsed probeOutput
	require.NoError(t, sonic.Unmarshal([]byte(raw), &parsed))

	info := toMediaInfo(parsed)
	assert.Equal(t, 30.0, info.Duration)
	assert.Zero(t, info.Width)
	assert.Equal(t, "mp3", info.AudioCodec)
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "c\nd", lastLines("a\nb\nc\nd", 2))
	assert.Equal(t, "a", lastLines("a", 5))
}
