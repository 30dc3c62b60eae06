package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
)

type anthropicProvider struct {
	client anthropic.Client
	model  string
	log    *zap.Logger
}

// NewAnthropicProvider builds the hosted Claude provider.
func NewAnthropicProvider(cfg *config.Config, log *zap.Logger) ModelProvider {
	return &anthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(cfg.Model.AnthropicAPIKey)),
		model:  cfg.Model.AnthropicModel,
		log:    log,
	}
}

func (p *anthropicProvider) Name() string { return "anthropic/" + p.model }

func (p *anthropicProvider) Complete(ctx context.Context, req CompletionRequest, onToken TokenSink) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		Messages:  anthropicMessages(req.History),
		MaxTokens: int64(req.MaxTokens),
		Tools:     anthropicTools(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	message := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("accumulate stream event: %w", err)
		}
		if onToken == nil {
			continue
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				onToken(text.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic stream: %w", err)
	}

	return anthropicCompletion(&message)
}

func anthropicMessages(history []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		if m.Text == "" {
			continue
		}
		block := anthropic.NewTextBlock(m.Text)
		if m.Role == model.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func anthropicTools(specs []catalog.ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, s := range specs {
		schema := s.InputSchema()
		tool := anthropic.ToolParam{
			Name:        s.Name,
			Description: anthropic.String(s.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
				Required:   schema["required"].([]string),
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func anthropicCompletion(message *anthropic.Message) (*Completion, error) {
	var (
		text  strings.Builder
		calls []catalog.ToolCall
	)
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(b.Input) > 0 {
				if err := sonic.Unmarshal(b.Input, &args); err != nil {
					return nil, fmt.Errorf("decode tool input for %s: %w", b.Name, err)
				}
			}
			calls = append(calls, catalog.ToolCall{ID: b.ID, Name: b.Name, Args: args})
		}
	}
	return &Completion{Text: text.String(), ToolCalls: calls}, nil
}
