package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/infra/remoteclient"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
	"github.com/clipforge/clipforge/internal/pkg/utils/mime"
	pathutil "github.com/clipforge/clipforge/internal/pkg/utils/path"
)

// MaxUploadSize caps one media upload (2GB).
const MaxUploadSize = 2 << 30

type FileHandler struct {
	svc      service.ProjectService
	resolver *pathref.Resolver
	remote   *remoteclient.Client
	log      *zap.Logger
}

// NewFileHandler builds the media upload handler. remote may be nil when the
// service runs against the local sandbox only.
func NewFileHandler(svc service.ProjectService, resolver *pathref.Resolver, remote *remoteclient.Client, log *zap.Logger) *FileHandler {
	return &FileHandler{svc: svc, resolver: resolver, remote: remote, log: log}
}

// UploadFile godoc
//
//	@Summary		Upload media file
//	@Description	Upload a video, image or audio file into the project's input area. The first video upload becomes the main video.
//	@Tags			file
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			project_id	path		string	true	"Project ID"
//	@Param			file		formData	file	true	"Media file"
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id}/file [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("missing file field", err))
		return
	}
	if fh.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "file too large", nil))
		return
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable upload", err))
		return
	}
	defer src.Close()

	name := pathutil.SanitizeFilename(fh.Filename)

	// Sniff the content type from the head of the stream, then stitch the
	// consumed bytes back for the copy below.
	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable upload", err))
		return
	}
	head = head[:n]
	reader := io.MultiReader(bytes.NewReader(head), src)

	contentType := mime.DetectMimeType(head, name)
	kind := mime.MediaKind(contentType)
	if kind == "" {
		c.JSON(http.StatusUnsupportedMediaType, serializer.Err(http.StatusUnsupportedMediaType, "unsupported media type: "+contentType, nil))
		return
	}

	inDir := h.resolver.AreaDir(id, pathref.AreaInput)
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "failed to prepare sandbox", err))
		return
	}

	localPath := filepath.Join(inDir, name)
	dst, err := os.Create(localPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "failed to store file", err))
		return
	}
	size, err := io.Copy(dst, reader)
	if cErr := dst.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		_ = os.Remove(localPath)
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "failed to store file", err))
		return
	}

	file := model.MediaFile{
		DisplayName: name,
		Kind:        kind,
		LocalPath:   localPath,
		SizeB:       size,
	}

	// Remote mode mirrors the upload into the runner's workspace so later
	// tool calls can address it by its sandbox-relative path.
	if h.remote != nil {
		f, err := os.Open(localPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "failed to store file", err))
			return
		}
		res, upErr := h.remote.UploadFile(c.Request.Context(), id, name, f)
		f.Close()
		if upErr != nil {
			c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, "remote upload failed", upErr))
			return
		}
		file.RemotePath = res.RelativePath
		file.RemoteURL = res.URL
	}

	p, err := h.svc.AddFile(c.Request.Context(), id, file)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	h.log.Info("file uploaded",
		zap.String("project_id", id.String()),
		zap.String("name", name),
		zap.String("kind", kind),
		zap.Int64("size_b", size))

	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

type SetMainVideoReq struct {
	FileID string `form:"file_id" json:"file_id" binding:"required"`
}

// SetMainVideo godoc
//
//	@Summary		Set main video
//	@Description	Designate one of the project's video files as the main video
//	@Tags			file
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string					true	"Project ID"
//	@Param			payload		body	handler.SetMainVideoReq	true	"File to promote"
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id}/file/main [put]
func (h *FileHandler) SetMainVideo(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	req := SetMainVideoReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid file_id", err))
		return
	}

	p, err := h.svc.SetMainVideo(c.Request.Context(), id, fileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
		case errors.Is(err, service.ErrFileNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("file not found"))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: p})
}
