package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/counslerai/counslerai/internal/config"
	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
)

// systemInstruction anchors every transcript sent to the provider.
const systemInstruction = "You are a helpful AI career counselor."

// Turn is one prior conversation entry supplied as advice context.
type Turn struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// completionClient is the slice of the provider client the service calls.
type completionClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Service proxies advice requests to an OpenAI-compatible chat-completion
// provider. It is stateless: it neither retries nor synthesizes fallback
// replies; faults propagate to the caller.
type Service struct {
	completions completionClient
	cfg         config.AIConfig
}

// NewService builds the provider client from configuration.
func NewService(cfg config.AIConfig) *Service {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	client := openai.NewClient(opts...)
	return &Service{completions: &client.Chat.Completions, cfg: cfg}
}

// GetAdvice sends the transcript built from context and prompt to the
// provider and returns the first completion's text. A provider response with
// no choices yields an empty string, not an error.
func (s *Service) GetAdvice(ctx context.Context, prompt string, contextTurns []Turn) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	turns := transcriptTurns(prompt, contextTurns)

	completion, err := s.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(s.cfg.Model),
		Messages:  providerMessages(turns),
		MaxTokens: openai.Int(s.cfg.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		log.Printf("[ai] provider returned no choices for model=%s", s.cfg.Model)
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// transcriptTurns normalizes the context senders and appends the prompt as
// the final user turn, unless the context already ends with that exact
// content. The trailing user turn therefore appears exactly once.
func transcriptTurns(prompt string, context []Turn) []Turn {
	turns := make([]Turn, 0, len(context)+1)
	for _, turn := range context {
		sender := chatmodel.SenderUser
		if turn.Sender == chatmodel.SenderAI {
			sender = chatmodel.SenderAI
		}
		turns = append(turns, Turn{Sender: sender, Content: turn.Content})
	}

	if len(turns) == 0 || turns[len(turns)-1].Content != prompt {
		turns = append(turns, Turn{Sender: chatmodel.SenderUser, Content: prompt})
	}
	return turns
}

// providerMessages maps turns onto the provider's role-tagged message list,
// led by the fixed system instruction. AI turns become assistant messages,
// everything else a user message.
func providerMessages(turns []Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(systemInstruction))
	for _, turn := range turns {
		if turn.Sender == chatmodel.SenderAI {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	return messages
}
