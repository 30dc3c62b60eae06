package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/modules/repo"
	"github.com/clipforge/clipforge/internal/pkg/paging"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
)

type ProjectService interface {
	Create(ctx context.Context, title string) (*model.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetTitle(ctx context.Context, id uuid.UUID, title string) error

	AddFile(ctx context.Context, id uuid.UUID, f model.MediaFile) (*model.Project, error)
	SetMainVideo(ctx context.Context, id uuid.UUID, fileID uuid.UUID) (*model.Project, error)
	AppendMessage(ctx context.Context, id uuid.UUID, msg model.Message) error
	SetCurrentOutput(ctx context.Context, id uuid.UUID, ref pathref.Reference) error
}

type projectService struct {
	r   repo.ProjectRepo
	log *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, log *zap.Logger) ProjectService {
	return &projectService{r: r, log: log}
}

func (s *projectService) Create(ctx context.Context, title string) (*model.Project, error) {
	p := &model.Project{
		ID:    uuid.New(),
		Title: title,
		State: datatypes.NewJSONType(model.ProjectState{
			Files:   []model.MediaFile{},
			History: []model.Message{},
		}),
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

type ListProjectsInput struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

type ListProjectsOutput struct {
	Items      []model.Project `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	// Query limit+1 is used to determine has_more
	projects, err := s.r.ListWithCursor(ctx, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListProjectsOutput{Items: projects}
	if len(projects) > in.Limit {
		out.HasMore = true
		out.Items = projects[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.UpdatedAt, last.ID)
	}
	return out, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.r.Delete(ctx, &model.Project{ID: id})
}

func (s *projectService) SetTitle(ctx context.Context, id uuid.UUID, title string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Title = title
	return s.r.Update(ctx, p)
}

// mutate loads the project, applies fn to its state, and writes it back.
func (s *projectService) mutate(ctx context.Context, id uuid.UUID, fn func(*model.ProjectState) error) (*model.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state := p.State.Data()
	if err := fn(&state); err != nil {
		return nil, err
	}
	p.State = datatypes.NewJSONType(state)

	if err := s.r.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) AddFile(ctx context.Context, id uuid.UUID, f model.MediaFile) (*model.Project, error) {
	return s.mutate(ctx, id, func(st *model.ProjectState) error {
		if f.ID == uuid.Nil {
			f.ID = uuid.New()
		}
		if f.AddedAt.IsZero() {
			f.AddedAt = time.Now()
		}
		// First video in becomes the main video automatically.
		if f.Kind == model.KindVideo && st.MainVideoID == nil {
			f.IsMainVideo = true
			st.MainVideoID = &f.ID
		}
		st.Files = append(st.Files, f)
		return nil
	})
}

func (s *projectService) SetMainVideo(ctx context.Context, id uuid.UUID, fileID uuid.UUID) (*model.Project, error) {
	return s.mutate(ctx, id, func(st *model.ProjectState) error {
		target := st.FileByID(fileID)
		if target == nil {
			return ErrFileNotFound
		}
		for i := range st.Files {
			st.Files[i].IsMainVideo = st.Files[i].ID == fileID
		}
		st.MainVideoID = &target.ID
		// Selecting a main video resets the canonical output to it, so the
		// next edit starts from the chosen file rather than a stale artifact.
		if ref := target.BestReference(); !ref.IsZero() {
			st.CurrentOutput = &ref
		}
		return nil
	})
}

func (s *projectService) AppendMessage(ctx context.Context, id uuid.UUID, msg model.Message) error {
	_, err := s.mutate(ctx, id, func(st *model.ProjectState) error {
		st.History = append(st.History, msg)
		return nil
	})
	return err
}

func (s *projectService) SetCurrentOutput(ctx context.Context, id uuid.UUID, ref pathref.Reference) error {
	if ref.IsZero() {
		return errors.New("current output reference is empty")
	}
	_, err := s.mutate(ctx, id, func(st *model.ProjectState) error {
		st.CurrentOutput = &ref
		return nil
	})
	return err
}
