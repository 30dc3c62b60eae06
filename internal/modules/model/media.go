package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/pkg/pathref"
)

// MediaKind classifies an uploaded file.
type MediaKind = string

const (
	KindVideo MediaKind = "video"
	KindImage MediaKind = "image"
	KindAudio MediaKind = "audio"
)

// MediaFile is one entry in a project's file registry. A file may be known
// under up to three addresses at once: its local sandbox path, the remote
// backend's relative path, and the remote backend's absolute URL.
type MediaFile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Kind        MediaKind `json:"kind"`

	LocalPath  string `json:"local_path,omitempty"`
	RemotePath string `json:"remote_path,omitempty"`
	RemoteURL  string `json:"remote_url,omitempty"`

	SizeB   int64     `json:"size_b"`
	AddedAt time.Time `json:"added_at"`

	// Probed lazily; zero until a probe has run.
	Duration float64 `json:"duration,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`

	IsMainVideo bool `json:"is_main_video"`
}

// BestReference picks the most portable address for the file: remote
// relative path over remote URL over local path.
func (f MediaFile) BestReference() pathref.Reference {
	switch {
	case f.RemotePath != "":
		return pathref.Parse(f.RemotePath)
	case f.RemoteURL != "":
		return pathref.Parse(f.RemoteURL)
	case f.LocalPath != "":
		return pathref.Parse(f.LocalPath)
	}
	return pathref.Reference{}
}

// MediaInfo is the structured stream metadata a probe returns.
type MediaInfo struct {
	Duration     float64 `json:"duration"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	FPS          float64 `json:"fps"`
	Bitrate      int64   `json:"bitrate"`
	Codec        string  `json:"codec"`
	AudioCodec   string  `json:"audio_codec,omitempty"`
	AudioBitrate int64   `json:"audio_bitrate,omitempty"`
}
