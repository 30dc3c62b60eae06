package mime

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extMimeMap refines detection for container formats whose content sniffing
// is ambiguous or extension-dependent.
var extMimeMap = map[string]string{
	".mkv":  "video/x-matroska",
	".ts":   "video/mp2t",
	".m4a":  "audio/mp4",
	".srt":  "application/x-subrip",
	".vtt":  "text/vtt",
	".json": "application/json",
}

// DetectMimeType detects the MIME type from file content, refining generic
// results with the file extension.
func DetectMimeType(content []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mimetype.Detect(content).String()

	if strings.HasPrefix(contentType, "application/octet-stream") ||
		strings.HasPrefix(contentType, "text/plain") {
		if refined, ok := extMimeMap[ext]; ok {
			return refined
		}
	}
	return contentType
}

// MediaKind maps a MIME type onto the coarse media classes the editor works
// with. Unrecognized types return "".
func MediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	default:
		return ""
	}
}
