package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
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

// pngHeader is a minimal valid PNG signature for content sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func uploadRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func fileRouter(t *testing.T, svc service.ProjectService, resolver *pathref.Resolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	h := NewFileHandler(svc, resolver, nil, zap.NewNop())
	r := gin.New()
	r.POST("/project/:project_id/file", h.UploadFile)
	r.PUT("/project/:project_id/file/main", h.SetMainVideo)
	return r
}

func TestFileHandler_UploadImage(t *testing.T) {
	svc := new(MockProjectService)
	resolver := pathref.NewResolver(t.TempDir())
	id := uuid.New()

	svc.On("AddFile", mock.Anything, id, mock.MatchedBy(func(f model.MediaFile) bool {
		return f.Kind == model.KindImage && f.DisplayName == "logo.png" && f.SizeB == int64(len(pngHeader))
	})).Return(&model.Project{ID: id}, nil)

	r := fileRouter(t, svc, resolver)
	req := uploadRequest(t, "/project/"+id.String()+"/file", "logo.png", pngHeader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// the bytes landed in the input area
	stored := filepath.Join(resolver.AreaDir(id, pathref.AreaInput), "logo.png")
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	svc.AssertExpectations(t)
}

func TestFileHandler_UploadRejectsNonMedia(t *testing.T) {
	svc := new(MockProjectService)
	r := fileRouter(t, svc, pathref.NewResolver(t.TempDir()))

	req := uploadRequest(t, "/project/"+uuid.NewString()+"/file", "notes.txt", []byte("just some text"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	svc.AssertNotCalled(t, "AddFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestFileHandler_UploadSanitizesFilename(t *testing.T) {
	svc := new(MockProjectService)
	resolver := pathref.NewResolver(t.TempDir())
	id := uuid.New()

	svc.On("AddFile", mock.Anything, id, mock.MatchedBy(func(f model.MediaFile) bool {
		return f.DisplayName == "evil.png"
	})).Return(&model.Project{ID: id}, nil)

	r := fileRouter(t, svc, resolver)
	req := uploadRequest(t, "/project/"+id.String()+"/file", "../../evil.png", pngHeader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestFileHandler_SetMainVideo(t *testing.T) {
	svc := new(MockProjectService)
	id := uuid.New()
	fileID := uuid.New()
	svc.On("SetMainVideo", mock.Anything, id, fileID).Return(&model.Project{ID: id}, nil)

	r := fileRouter(t, svc, pathref.NewResolver(t.TempDir()))
	body := bytes.NewBufferString(`{"file_id":"` + fileID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPut, "/project/"+id.String()+"/file/main", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestFileHandler_SetMainVideoUnknownFile(t *testing.T) {
	svc := new(MockProjectService)
	svc.On("SetMainVideo", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, service.ErrFileNotFound)

	r := fileRouter(t, svc, pathref.NewResolver(t.TempDir()))
	body := bytes.NewBufferString(`{"file_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPut, "/project/"+uuid.NewString()+"/file/main", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
