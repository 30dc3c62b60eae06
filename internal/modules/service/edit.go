package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
	"github.com/clipforge/clipforge/internal/pkg/prompt"
	"github.com/clipforge/clipforge/internal/telemetry"
)

// EditEvent is one unit of the streamed turn: text tokens as the model
// produces them, tool results as they execute, then a terminal done or
// error event.
type EditEvent struct {
	Type   string                      `json:"type"`
	Token  string                      `json:"token,omitempty"`
	Result *model.ToolInvocationRecord `json:"result,omitempty"`
	Error  string                      `json:"error,omitempty"`
}

const (
	EventToken      = "token"
	EventToolResult = "tool_result"
	EventDone       = "done"
	EventError      = "error"
)

// TurnResult is the durable outcome of one edit turn.
type TurnResult struct {
	Assistant model.Message `json:"assistant"`
	// Output is the canonical output after the turn, unchanged when every
	// call failed.
	Output string `json:"output,omitempty"`
}

type EditService interface {
	// RunTurn executes one conversation turn: the user's request goes to
	// the model, proposed tool calls run sequentially, and the project's
	// state is updated from the results. Events stream to emit as the turn
	// progresses.
	RunTurn(ctx context.Context, projectID uuid.UUID, userText string, emit func(EditEvent)) (*TurnResult, error)
}

type editService struct {
	projects ProjectService
	gateway  *ModelGateway
	backend  EditBackend
	notifier *Notifier
	cfg      *config.Config
	log      *zap.Logger

	mu    sync.Mutex
	turns map[uuid.UUID]*sync.Mutex
}

func NewEditService(
	projects ProjectService,
	gateway *ModelGateway,
	backend EditBackend,
	notifier *Notifier,
	cfg *config.Config,
	log *zap.Logger,
) EditService {
	return &editService{
		projects: projects,
		gateway:  gateway,
		backend:  backend,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		turns:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// turnLock returns the per-project mutex, creating it on first use.
func (s *editService) turnLock(projectID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.turns[projectID]
	if !ok {
		m = &sync.Mutex{}
		s.turns[projectID] = m
	}
	return m
}

func (s *editService) RunTurn(ctx context.Context, projectID uuid.UUID, userText string, emit func(EditEvent)) (result *TurnResult, err error) {
	if emit == nil {
		emit = func(EditEvent) {}
	}

	start := time.Now()
	defer func() {
		telemetry.RecordEditTurn(ctx, float64(time.Since(start).Milliseconds()), err == nil)
	}()

	// One turn at a time per project; concurrent turns would race on the
	// canonical output.
	lock := s.turnLock(projectID)
	if !lock.TryLock() {
		return nil, ErrEditInProgress
	}
	defer lock.Unlock()

	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	userMsg := model.NewUserMessage(userText)
	if err := s.projects.AppendMessage(ctx, projectID, userMsg); err != nil {
		return nil, err
	}

	state := p.State.Data()
	history := append(state.History, userMsg)

	completion, err := s.complete(ctx, projectID, p.Title, &state, history, emit)
	if err != nil {
		// The failure becomes part of the conversation so the user's message
		// does not hang unanswered and the next turn can proceed normally.
		failMsg := model.NewAssistantMessage("I ran into a problem reaching the editing model: "+err.Error()+". Please try again.", nil)
		if aerr := s.projects.AppendMessage(ctx, projectID, failMsg); aerr != nil {
			s.log.Warn("failed to record model failure message",
				zap.String("project_id", projectID.String()),
				zap.Error(aerr))
		}
		emit(EditEvent{Type: EventError, Error: err.Error()})
		return nil, err
	}

	assistant := model.NewAssistantMessage(completion.Text, nil)

	// Tool calls run strictly in order against the state as it was when the
	// model proposed them. A failed call is recorded and skipped over; the
	// calls after it still run with their original arguments.
	var lastOutput *model.ToolInvocationRecord
	for _, call := range completion.ToolCalls {
		record := s.runCall(ctx, projectID, call)
		assistant.ToolCalls = append(assistant.ToolCalls, record)
		emit(EditEvent{Type: EventToolResult, Result: &record})

		if record.Success && record.OutputPath != "" {
			lastOutput = &assistant.ToolCalls[len(assistant.ToolCalls)-1]
		}
	}
	assistant.Text = composeAssistantText(completion.Text, assistant.ToolCalls)

	// Only a successful call advances the canonical output; the last one
	// wins when several succeed.
	result = &TurnResult{Assistant: assistant}
	if lastOutput != nil {
		ref := pathref.Parse(lastOutput.OutputPath)
		if err := s.projects.SetCurrentOutput(ctx, projectID, ref); err != nil {
			return nil, err
		}
		result.Output = ref.String()

		s.notifier.EditCompleted(ctx, EditCompletedEvent{
			ProjectID:  projectID,
			Tool:       lastOutput.Tool,
			OutputPath: lastOutput.OutputPath,
			OutputURL:  lastOutput.OutputURL,
		})
	}

	if err := s.projects.AppendMessage(ctx, projectID, assistant); err != nil {
		return nil, err
	}

	emit(EditEvent{Type: EventDone})
	return result, nil
}

// composeAssistantText appends one result line per tool call to the model's
// free text. The records themselves are not replayed to the model on later
// turns, so the lines keep each outcome visible in the conversation.
func composeAssistantText(text string, records []model.ToolInvocationRecord) string {
	if len(records) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for _, rec := range records {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		status := "done"
		if !rec.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "[%s %s] %s", rec.Tool, status, rec.Summary)
	}
	return b.String()
}

// complete assembles the prompt and runs the model turn, streaming tokens.
func (s *editService) complete(ctx context.Context, projectID uuid.UUID, title string, state *model.ProjectState, history []model.Message, emit func(EditEvent)) (*Completion, error) {
	sandbox := s.sandboxContents(ctx, projectID)
	system := prompt.SystemContext(title, state, sandbox)
	trimmed := prompt.TrimHistory(history, s.cfg.Model.PromptTokenBudget)

	return s.gateway.Complete(ctx, CompletionRequest{
		System:    system,
		History:   trimmed,
		Tools:     catalog.List(),
		MaxTokens: s.cfg.Model.MaxTokens,
	}, func(token string) {
		emit(EditEvent{Type: EventToken, Token: token})
	})
}

// sandboxContents lists the sandbox for the prompt through the same
// list_sandbox tool the model uses. Best effort: a listing failure degrades
// the context instead of failing the turn.
func (s *editService) sandboxContents(ctx context.Context, projectID uuid.UUID) *prompt.Sandbox {
	outcome, err := s.backend.Invoke(ctx, projectID, catalog.ToolCall{Name: catalog.ToolListSandbox})
	if err != nil || !outcome.Success || outcome.Listing == nil {
		if err != nil {
			s.log.Warn("sandbox listing failed", zap.Error(err))
		}
		return &prompt.Sandbox{}
	}
	return &prompt.Sandbox{Input: outcome.Listing.Input, Output: outcome.Listing.Output}
}

// runCall executes a single tool call and records its outcome. Backend
// infrastructure errors become failed records so one broken call never
// aborts the rest of the turn.
func (s *editService) runCall(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) model.ToolInvocationRecord {
	record := model.ToolInvocationRecord{Tool: call.Name, Args: call.Args}

	outcome, err := s.backend.Invoke(ctx, projectID, call)
	if err != nil {
		s.log.Error("tool invocation failed",
			zap.String("project_id", projectID.String()),
			zap.String("tool", call.Name),
			zap.Error(err))
		record.Success = false
		record.Summary = "execution error: " + err.Error()
		telemetry.RecordToolInvocation(ctx, call.Name, false)
		return record
	}

	record.Success = outcome.Success
	record.Summary = outcome.Message
	telemetry.RecordToolInvocation(ctx, call.Name, outcome.Success)
	if outcome.Output != nil {
		record.OutputPath = outcome.Output.String()
	}
	record.OutputURL = outcome.OutputURL
	return record
}
