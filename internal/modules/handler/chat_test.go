package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/modules/serializer"
	"github.com/clipforge/clipforge/internal/modules/service"
)

// MockEditService is a mock implementation of EditService.
type MockEditService struct {
	mock.Mock
}

func (m *MockEditService) RunTurn(ctx context.Context, projectID uuid.UUID, userText string, emit func(service.EditEvent)) (*service.TurnResult, error) {
	args := m.Called(ctx, projectID, userText, emit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TurnResult), args.Error(1)
}

type idleProvider struct{}

func (idleProvider) Name() string { return "test" }
func (idleProvider) Complete(context.Context, service.CompletionRequest, service.TokenSink) (*service.Completion, error) {
	return &service.Completion{}, nil
}

func chatRouter(t *testing.T, svc service.EditService, started bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	gateway := service.NewModelGateway(idleProvider{}, zap.NewNop())
	if started {
		require.NoError(t, gateway.Start(context.Background()))
	}

	h := NewChatHandler(svc, gateway)
	r := gin.New()
	r.POST("/project/:project_id/chat", h.Chat)
	r.POST("/agent/start", h.AgentStart)
	r.GET("/agent/status", h.AgentStatus)
	return r
}

func sseEvents(t *testing.T, body string) []service.EditEvent {
	t.Helper()
	var events []service.EditEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev service.EditEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestChatHandler_StreamsEvents(t *testing.T) {
	svc := new(MockEditService)
	id := uuid.New()
	svc.On("RunTurn", mock.Anything, id, "trim it", mock.Anything).
		Run(func(args mock.Arguments) {
			emit := args.Get(3).(func(service.EditEvent))
			emit(service.EditEvent{Type: service.EventToken, Token: "Trimming"})
			emit(service.EditEvent{Type: service.EventDone})
		}).
		Return(&service.TurnResult{}, nil)

	r := chatRouter(t, svc, true)
	body := bytes.NewBufferString(`{"message":"trim it"}`)
	req := httptest.NewRequest(http.MethodPost, "/project/"+id.String()+"/chat", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := sseEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, service.EventToken, events[0].Type)
	assert.Equal(t, "Trimming", events[0].Token)
	assert.Equal(t, service.EventDone, events[1].Type)
}

func TestChatHandler_NotReadyBecomesErrorEvent(t *testing.T) {
	svc := new(MockEditService)
	svc.On("RunTurn", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, service.ErrAgentNotReady)

	r := chatRouter(t, svc, false)
	body := bytes.NewBufferString(`{"message":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/project/"+uuid.NewString()+"/chat", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	events := sseEvents(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, service.EventError, events[0].Type)
	assert.Contains(t, events[0].Error, "not ready")
}

func TestChatHandler_AgentLifecycle(t *testing.T) {
	r := chatRouter(t, new(MockEditService), false)

	req := httptest.NewRequest(http.MethodGet, "/agent/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp serializer.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Data.(map[string]interface{})["state"])

	req = httptest.NewRequest(http.MethodPost, "/agent/start", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Data.(map[string]interface{})["state"])
}
