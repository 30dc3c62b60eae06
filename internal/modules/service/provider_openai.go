package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
)

type openAIProvider struct {
	client openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIProvider builds the OpenAI-protocol provider. With a BaseURL it
// fronts local OpenAI-compatible runtimes (llama.cpp, vLLM, Ollama) as well
// as the hosted API.
func NewOpenAIProvider(cfg *config.Config, log *zap.Logger) ModelProvider {
	opts := []option.RequestOption{}
	if cfg.Model.OpenAIAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.Model.OpenAIAPIKey))
	}
	if cfg.Model.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Model.OpenAIBaseURL))
	}
	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model.OpenAIModel,
		log:    log,
	}
}

func (p *openAIProvider) Name() string { return "openai/" + p.model }

// Warm issues a one-token completion so a local runtime loads the model
// before the first real turn.
func (p *openAIProvider) Warm(ctx context.Context) error {
	_, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("ping")},
		MaxTokens: param.NewOpt(int64(1)),
	})
	if err != nil {
		return fmt.Errorf("warm model %s: %w", p.model, err)
	}
	return nil
}

func (p *openAIProvider) Complete(ctx context.Context, req CompletionRequest, onToken TokenSink) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  openAIMessages(req.System, req.History),
		MaxTokens: param.NewOpt(int64(req.MaxTokens)),
		Tools:     openAITools(req.Tools),
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if onToken == nil || len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if cleaned := stripSentinels(delta); cleaned != "" {
				onToken(cleaned)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}
	if len(acc.Choices) == 0 {
		return nil, fmt.Errorf("openai stream returned no choices")
	}

	msg := acc.Choices[0].Message
	out := &Completion{Text: strings.TrimSpace(stripSentinels(msg.Content))}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := sonic.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("decode tool arguments for %s: %w", tc.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, catalog.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out, nil
}

func openAIMessages(system string, history []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range history {
		if m.Text == "" {
			continue
		}
		if m.Role == model.RoleAssistant {
			out = append(out, openai.AssistantMessage(m.Text))
		} else {
			out = append(out, openai.UserMessage(m.Text))
		}
	}
	return out
}

func openAITools(specs []catalog.ToolSpec) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, s := range specs {
		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        s.Name,
			Description: param.NewOpt(s.Description),
			Parameters:  shared.FunctionParameters(s.InputSchema()),
		}))
	}
	return out
}

// sentinelRe matches chat-template control tokens some local runtimes leak
// into their output, e.g. <|im_end|> or <|eot_id|>.
var sentinelRe = regexp.MustCompile(`<\|[a-zA-Z0-9_]+\|>`)

func stripSentinels(s string) string {
	return sentinelRe.ReplaceAllString(s, "")
}
