package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
)

type SettingsHandler struct {
	svc service.SettingsService
}

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// GetSettings godoc
//
//	@Summary		Get settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=model.Settings}
//	@Router			/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "failed to load settings", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: s})
}

// UpdateSettings godoc
//
//	@Summary		Update settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	model.Settings	true	"Settings document"
//	@Success		200	{object}	serializer.Response{data=model.Settings}
//	@Router			/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	s := model.Settings{}
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.Update(c.Request.Context(), &s); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "failed to save settings", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: s})
}
