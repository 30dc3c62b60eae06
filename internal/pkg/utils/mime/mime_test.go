package mime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMimeTypePNG(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	assert.Equal(t, "image/png", DetectMimeType(png, "logo.png"))
}

func TestDetectMimeTypeRefinesByExtension(t *testing.T) {
	// Subtitle files sniff as plain text; the extension decides.
	srt := []byte("1\n00:00:01,000 --> 00:00:02,000\nhello\n")
	got := DetectMimeType(srt, "subs.srt")
	assert.Equal(t, "application/x-subrip", got)
}

func TestMediaKind(t *testing.T) {
	assert.Equal(t, "video", MediaKind("video/mp4"))
	assert.Equal(t, "image", MediaKind("image/png"))
	assert.Equal(t, "audio", MediaKind("audio/mpeg; charset=binary"))
	assert.Equal(t, "", MediaKind("text/plain; charset=utf-8"))
	assert.Equal(t, "", MediaKind("application/pdf"))
}
