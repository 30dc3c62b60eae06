package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
)

type ToolHandler struct{}

func NewToolHandler() *ToolHandler { return &ToolHandler{} }

// ListTools godoc
//
//	@Summary		List editing tools
//	@Description	List the tool catalog the agent can call, with parameter schemas
//	@Tags			tool
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]catalog.ToolSpec}
//	@Router			/tools [get]
func (h *ToolHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: catalog.List()})
}
