package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
)

type ChatHandler struct {
	svc     service.EditService
	gateway *service.ModelGateway
}

func NewChatHandler(svc service.EditService, gateway *service.ModelGateway) *ChatHandler {
	return &ChatHandler{svc: svc, gateway: gateway}
}

type ChatReq struct {
	Message string `form:"message" json:"message" binding:"required"`
}

type AgentStatus struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Chat godoc
//
//	@Summary		Run an edit turn
//	@Description	Send a user message to the editing agent. The response is a server-sent event stream of token, tool_result and done events.
//	@Tags			chat
//	@Accept			json
//	@Produce		text/event-stream
//	@Param			project_id	path	string			true	"Project ID"
//	@Param			payload		body	handler.ChatReq	true	"User message"
//	@Success		200	{string}	string	"SSE stream"
//	@Router			/project/{project_id}/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	req := ChatReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	emit := func(ev service.EditEvent) {
		writeSSE(c.Writer, ev)
	}

	if _, err := h.svc.RunTurn(c.Request.Context(), id, req.Message, emit); err != nil {
		// Pre-stream failures (unknown project, busy project, agent not
		// ready) never produced an error event; send one so the client
		// does not hang on a silent stream.
		switch {
		case errors.Is(err, service.ErrProjectNotFound),
			errors.Is(err, service.ErrEditInProgress),
			errors.Is(err, service.ErrAgentNotReady):
			writeSSE(c.Writer, service.EditEvent{Type: service.EventError, Error: err.Error()})
		}
	}
}

func writeSSE(w io.Writer, ev service.EditEvent) {
	raw, err := sonic.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(raw)
	_, _ = w.Write([]byte("\n\n"))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// AgentStart godoc
//
//	@Summary		Start the model gateway
//	@Description	Acquire the configured model provider. Safe to call repeatedly; a failed acquisition can be retried.
//	@Tags			agent
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=handler.AgentStatus}
//	@Router			/agent/start [post]
func (h *ChatHandler) AgentStart(c *gin.Context) {
	if err := h.gateway.Start(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, "model acquisition failed", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: h.status()})
}

// AgentStatus godoc
//
//	@Summary		Model gateway status
//	@Tags			agent
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=handler.AgentStatus}
//	@Router			/agent/status [get]
func (h *ChatHandler) AgentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: h.status()})
}

func (h *ChatHandler) status() AgentStatus {
	state, err := h.gateway.State()
	out := AgentStatus{State: string(state)}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
