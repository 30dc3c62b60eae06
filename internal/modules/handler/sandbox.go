package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
	pathutil "github.com/clipforge/clipforge/internal/pkg/utils/path"
)

type SandboxHandler struct {
	backend  service.EditBackend
	resolver *pathref.Resolver
}

func NewSandboxHandler(backend service.EditBackend, resolver *pathref.Resolver) *SandboxHandler {
	return &SandboxHandler{backend: backend, resolver: resolver}
}

// ListSandbox godoc
//
//	@Summary		List sandbox files
//	@Description	List the files in the project's input and output areas
//	@Tags			sandbox
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"
//	@Success		200	{object}	serializer.Response{data=remoteclient.SandboxListing}
//	@Router			/project/{project_id}/sandbox [get]
func (h *SandboxHandler) ListSandbox(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	outcome, err := h.backend.Invoke(c.Request.Context(), id, catalog.ToolCall{Name: catalog.ToolListSandbox})
	if err != nil {
		c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, "sandbox listing failed", err))
		return
	}
	if !outcome.Success {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, outcome.Message, nil))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: outcome.Listing})
}

// GetFile godoc
//
//	@Summary		Download a sandbox file
//	@Description	Serve a file from the local sandbox's input or output area
//	@Tags			sandbox
//	@Produce		octet-stream
//	@Param			project_id	path	string	true	"Project ID"
//	@Param			area		path	string	true	"input or output"
//	@Param			name		path	string	true	"File name"
//	@Success		200	{file}	binary
//	@Router			/project/{project_id}/sandbox/{area}/{name} [get]
func (h *SandboxHandler) GetFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	area := c.Param("area")
	if area != pathref.AreaInput && area != pathref.AreaOutput {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("area must be input or output", nil))
		return
	}
	name := c.Param("name")
	if err := pathutil.ValidateSandboxName(name); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid file name", err))
		return
	}

	c.File(filepath.Join(h.resolver.AreaDir(id, area), name))
}
