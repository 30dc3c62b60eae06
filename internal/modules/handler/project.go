package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/infra/remoteclient"
	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
)

type ProjectHandler struct {
	svc      service.ProjectService
	resolver *pathref.Resolver
	remote   *remoteclient.Client
	log      *zap.Logger
}

// NewProjectHandler builds the project CRUD handler. remote may be nil when
// the service runs against the local sandbox only.
func NewProjectHandler(svc service.ProjectService, resolver *pathref.Resolver, remote *remoteclient.Client, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, resolver: resolver, remote: remote, log: log}
}

type CreateProjectReq struct {
	Title string `form:"title" json:"title"`
}

type ListProjectsReq struct {
	Limit  int    `form:"limit,default=20" json:"limit"`
	Cursor string `form:"cursor" json:"cursor"`
}

type RenameProjectReq struct {
	Title string `form:"title" json:"title" binding:"required"`
}

func projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project_id", err))
		return uuid.Nil, false
	}
	return id, true
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List projects, most recently updated first
//	@Tags			project
//	@Produce		json
//	@Param			limit	query	integer	false	"Page size, default 20. Max 200."
//	@Param			cursor	query	string	false	"Cursor from the previous page"
//	@Success		200	{object}	serializer.Response{data=service.ListProjectsOutput}
//	@Router			/project [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		Limit:  req.Limit,
		Cursor: req.Cursor,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a new editing project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/project [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if req.Title == "" {
		req.Title = "Untitled project"
	}

	p, err := h.svc.Create(c.Request.Context(), req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	// The remote runner keeps a per-project workspace; registration is
	// idempotent on its side.
	if h.remote != nil {
		if err := h.remote.RegisterProject(c.Request.Context(), p.ID); err != nil {
			h.log.Warn("remote project registration failed",
				zap.String("project_id", p.ID.String()),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get a project with its full working state
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/project/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// RenameProject godoc
//
//	@Summary		Rename project
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"
//	@Param			payload		body	handler.RenameProjectReq	true	"New title"
//	@Success		200	{object}	serializer.Response
//	@Router			/project/{project_id}/title [put]
func (h *ProjectHandler) RenameProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	req := RenameProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.SetTitle(c.Request.Context(), id, req.Title); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project, its sandbox directory and its remote workspace
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"
//	@Success		200	{object}	serializer.Response
//	@Router			/project/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	// Workspace cleanup is best effort; the row is already gone.
	if err := os.RemoveAll(h.resolver.ProjectDir(id)); err != nil {
		h.log.Warn("sandbox cleanup failed",
			zap.String("project_id", id.String()),
			zap.Error(err))
	}
	if h.remote != nil {
		if err := h.remote.DeleteProject(c.Request.Context(), id); err != nil {
			h.log.Warn("remote workspace cleanup failed",
				zap.String("project_id", id.String()),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}
