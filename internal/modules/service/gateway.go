package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
)

// TokenSink receives streamed completion text as it arrives.
type TokenSink func(token string)

// CompletionRequest is one model turn: system context, conversation so far,
// and the tools the model may call.
type CompletionRequest struct {
	System    string
	History   []model.Message
	Tools     []catalog.ToolSpec
	MaxTokens int
}

// Completion is the model's full reply for one turn.
type Completion struct {
	Text      string
	ToolCalls []catalog.ToolCall
}

// ModelProvider is a language model backend capable of streaming tool-use
// completions.
type ModelProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest, onToken TokenSink) (*Completion, error)
}

// warmer is implemented by providers that need a load step before first use,
// typically local runtimes that page the model into memory.
type warmer interface {
	Warm(ctx context.Context) error
}

// GatewayState is the lifecycle state of the model gateway.
type GatewayState string

const (
	GatewayIdle      GatewayState = "idle"
	GatewayAcquiring GatewayState = "acquiring"
	GatewayReady     GatewayState = "ready"
	GatewayError     GatewayState = "error"
)

// ModelGateway guards access to the model provider behind an explicit
// lifecycle. Completions fail fast with ErrAgentNotReady until Start has
// brought the provider to Ready; a failed Start parks the gateway in Error
// until Start is called again.
type ModelGateway struct {
	mu       sync.RWMutex
	state    GatewayState
	lastErr  error
	provider ModelProvider
	log      *zap.Logger
}

// NewModelProviderFromConfig picks the provider named by configuration.
func NewModelProviderFromConfig(cfg *config.Config, log *zap.Logger) ModelProvider {
	if cfg.Model.Provider == "openai" {
		return NewOpenAIProvider(cfg, log)
	}
	return NewAnthropicProvider(cfg, log)
}

func NewModelGateway(provider ModelProvider, log *zap.Logger) *ModelGateway {
	return &ModelGateway{
		state:    GatewayIdle,
		provider: provider,
		log:      log,
	}
}

// Start moves the gateway to Ready, warming the provider when it needs it.
// Safe to call again after an error.
func (g *ModelGateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.state == GatewayReady || g.state == GatewayAcquiring {
		g.mu.Unlock()
		return nil
	}
	g.state = GatewayAcquiring
	g.lastErr = nil
	g.mu.Unlock()

	if w, ok := g.provider.(warmer); ok {
		if err := w.Warm(ctx); err != nil {
			g.mu.Lock()
			g.state = GatewayError
			g.lastErr = err
			g.mu.Unlock()
			g.log.Error("model provider warmup failed",
				zap.String("provider", g.provider.Name()),
				zap.Error(err))
			return err
		}
	}

	g.mu.Lock()
	g.state = GatewayReady
	g.mu.Unlock()
	g.log.Info("model gateway ready", zap.String("provider", g.provider.Name()))
	return nil
}

// State returns the current lifecycle state and the error that put the
// gateway in Error, if any.
func (g *ModelGateway) State() (GatewayState, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state, g.lastErr
}

// Complete runs one model turn. Fails fast when the gateway is not Ready so
// callers never queue behind a provider that cannot answer.
func (g *ModelGateway) Complete(ctx context.Context, req CompletionRequest, onToken TokenSink) (*Completion, error) {
	g.mu.RLock()
	state := g.state
	g.mu.RUnlock()
	if state != GatewayReady {
		return nil, ErrAgentNotReady
	}
	return g.provider.Complete(ctx, req, onToken)
}
