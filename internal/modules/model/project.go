package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/clipforge/clipforge/internal/pkg/pathref"
)

// Project is the persistence row for one editing project. Everything the
// edit loop mutates lives inside the State JSON blob; the row itself only
// carries identity and timestamps so the store stays a key-value blob store
// keyed by project id.
type Project struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title string    `gorm:"type:text;not null;default:''" json:"title"`

	State datatypes.JSONType[ProjectState] `gorm:"type:jsonb;not null" json:"state"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// ProjectState is the JSON blob with the session's working state.
//
// Invariants:
//   - MainVideoID, when set, references an entry of Files.
//   - At most one file has IsMainVideo = true, and it is the MainVideoID one.
//   - CurrentOutput, once set, is only ever replaced, never cleared.
//   - History is append-only in conversation order.
type ProjectState struct {
	Files         []MediaFile        `json:"files"`
	MainVideoID   *uuid.UUID         `json:"main_video_id,omitempty"`
	CurrentOutput *pathref.Reference `json:"current_output,omitempty"`
	History       []Message          `json:"history"`
}

// FileByID finds a media file in the registry.
func (s *ProjectState) FileByID(id uuid.UUID) *MediaFile {
	for i := range s.Files {
		if s.Files[i].ID == id {
			return &s.Files[i]
		}
	}
	return nil
}

// MainVideo returns the designated main video, or nil when none is set.
func (s *ProjectState) MainVideo() *MediaFile {
	if s.MainVideoID == nil {
		return nil
	}
	return s.FileByID(*s.MainVideoID)
}

// ActiveInput is the reference fed to the model and to the first tool call
// of a turn: the canonical output when one exists, else the main video's
// best reference. The continuity rule that makes iterative edits compose.
func (s *ProjectState) ActiveInput() *pathref.Reference {
	if s.CurrentOutput != nil && !s.CurrentOutput.IsZero() {
		return s.CurrentOutput
	}
	if mv := s.MainVideo(); mv != nil {
		ref := mv.BestReference()
		if !ref.IsZero() {
			return &ref
		}
	}
	return nil
}
