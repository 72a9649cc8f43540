package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/taskai/internal/tasks"
)

const systemPrompt = `You are TaskAI, a friendly assistant for a personal todo list.
You can list the user's tasks, create new tasks, and mark tasks complete using
the provided tools. Keep replies short and conversational. When you create or
complete a task, confirm what you did.`

// How many tool-call rounds a single turn may take before the model must
// answer in plain text.
const maxToolRounds = 4

// ModelOptions configures the underlying LLM.
type ModelOptions struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// NewModel constructs the langchain model for the configured provider.
func NewModel(ctx context.Context, opts ModelOptions) (llms.Model, error) {
	log.Debug().
		Str("provider", opts.Provider).
		Str("model", opts.Model).
		Msg("Creating agent model")

	switch opts.Provider {
	case "openai":
		o := []openai.Option{
			openai.WithToken(opts.APIKey),
			openai.WithModel(opts.Model),
		}
		if opts.BaseURL != "" {
			o = append(o, openai.WithBaseURL(opts.BaseURL))
		}
		return openai.New(o...)
	case "gemini":
		return googleai.New(ctx,
			googleai.WithAPIKey(opts.APIKey),
			googleai.WithDefaultModel(opts.Model))
	case "claude":
		return anthropic.New(
			anthropic.WithToken(opts.APIKey),
			anthropic.WithModel(opts.Model))
	case "ollama":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.New(
			ollama.WithServerURL(baseURL),
			ollama.WithModel(opts.Model))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", opts.Provider)
	}
}

// LangchainFactory builds per-turn gateways over a shared langchain model.
// The model client is stateless; everything user-specific lives in the
// per-turn handle.
type LangchainFactory struct {
	llm         llms.Model
	taskStore   *tasks.Service
	temperature float64
}

// NewLangchainFactory creates a gateway factory for the given model and task
// store.
func NewLangchainFactory(llm llms.Model, taskStore *tasks.Service, temperature float64) *LangchainFactory {
	return &LangchainFactory{llm: llm, taskStore: taskStore, temperature: temperature}
}

// ForUser returns a gateway whose tools operate on the given user's tasks.
func (f *LangchainFactory) ForUser(userID uuid.UUID) Gateway {
	return &langchainGateway{
		llm:         f.llm,
		toolbox:     newTaskToolbox(f.taskStore, userID),
		temperature: f.temperature,
	}
}

type langchainGateway struct {
	llm         llms.Model
	toolbox     *taskToolbox
	temperature float64
}

// Process runs the tool-calling loop: the model may request task tool
// invocations before producing its final text reply.
func (g *langchainGateway) Process(ctx context.Context, history []Exchange) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	for _, ex := range history {
		role := llms.ChatMessageTypeHuman
		if ex.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, ex.Content))
	}

	for round := 0; round <= maxToolRounds; round++ {
		resp, err := g.llm.GenerateContent(ctx, messages,
			llms.WithTools(g.toolbox.definitions()),
			llms.WithTemperature(g.temperature),
		)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyReply
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			reply := strings.TrimSpace(choice.Content)
			if reply == "" {
				return "", ErrEmptyReply
			}
			return reply, nil
		}

		// Echo the tool calls back, then answer each one.
		assistantParts := make([]llms.ContentPart, 0, len(choice.ToolCalls))
		for _, call := range choice.ToolCalls {
			assistantParts = append(assistantParts, call)
		}
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		for _, call := range choice.ToolCalls {
			result := g.toolbox.dispatch(ctx, call.FunctionCall.Name, call.FunctionCall.Arguments)
			log.Debug().
				Str("tool", call.FunctionCall.Name).
				Msg("Agent tool call executed")
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       call.FunctionCall.Name,
					Content:    result,
				}},
			})
		}
	}

	return "", fmt.Errorf("tool-call budget exhausted after %d rounds", maxToolRounds)
}
