package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
)

// MockProjectService is a mock implementation of ProjectService.
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, title string) (*model.Project, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, in service.ListProjectsInput) (*service.ListProjectsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProjectsOutput), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) SetTitle(ctx context.Context, id uuid.UUID, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockProjectService) AddFile(ctx context.Context, id uuid.UUID, f model.MediaFile) (*model.Project, error) {
	args := m.Called(ctx, id, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) SetMainVideo(ctx context.Context, id uuid.UUID, fileID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) AppendMessage(ctx context.Context, id uuid.UUID, msg model.Message) error {
	args := m.Called(ctx, id, msg)
	return args.Error(0)
}

func (m *MockProjectService) SetCurrentOutput(ctx context.Context, id uuid.UUID, ref pathref.Reference) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

func projectRouter(t *testing.T, svc service.ProjectService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	h := NewProjectHandler(svc, pathref.NewResolver(t.TempDir()), nil, zap.NewNop())
	r := gin.New()
	r.GET("/project", h.ListProjects)
	r.POST("/project", h.CreateProject)
	r.GET("/project/:project_id", h.GetProject)
	r.PUT("/project/:project_id/title", h.RenameProject)
	r.DELETE("/project/:project_id", h.DeleteProject)
	return r
}

func TestProjectHandler_Create(t *testing.T) {
	svc := new(MockProjectService)
	p := &model.Project{ID: uuid.New(), Title: "Holiday cut"}
	svc.On("Create", mock.Anything, "Holiday cut").Return(p, nil)

	r := projectRouter(t, svc)
	body := bytes.NewBufferString(`{"title":"Holiday cut"}`)
	req := httptest.NewRequest(http.MethodPost, "/project", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp serializer.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Holiday cut", data["title"])
	svc.AssertExpectations(t)
}

func TestProjectHandler_CreateDefaultTitle(t *testing.T) {
	svc := new(MockProjectService)
	svc.On("Create", mock.Anything, "Untitled project").
		Return(&model.Project{ID: uuid.New(), Title: "Untitled project"}, nil)

	r := projectRouter(t, svc)
	req := httptest.NewRequest(http.MethodPost, "/project", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestProjectHandler_GetNotFound(t *testing.T) {
	svc := new(MockProjectService)
	svc.On("Get", mock.Anything, mock.Anything).Return(nil, service.ErrProjectNotFound)

	r := projectRouter(t, svc)
	req := httptest.NewRequest(http.MethodGet, "/project/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectHandler_GetBadID(t *testing.T) {
	r := projectRouter(t, new(MockProjectService))
	req := httptest.NewRequest(http.MethodGet, "/project/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectHandler_Rename(t *testing.T) {
	svc := new(MockProjectService)
	id := uuid.New()
	svc.On("SetTitle", mock.Anything, id, "Renamed").Return(nil)

	r := projectRouter(t, svc)
	body := bytes.NewBufferString(`{"title":"Renamed"}`)
	req := httptest.NewRequest(http.MethodPut, "/project/"+id.String()+"/title", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestProjectHandler_Delete(t *testing.T) {
	svc := new(MockProjectService)
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	r := projectRouter(t, svc)
	req := httptest.NewRequest(http.MethodDelete, "/project/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
