package agent

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/beespeak/honeypot/internal/history"
	"github.com/beespeak/honeypot/pkg/logging"
)

const systemPrompt = "You are a normal human user chatting with someone who may be a scammer. " +
	"Reply naturally, briefly, and contextually. " +
	"Do not reveal that you are detecting scams or running any analysis."

// chatClient is the slice of the OpenAI client the generator needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces human-like engagement replies. It degrades to an empty
// reply whenever the model is unconfigured or the call fails, so the
// pipeline's response contract always holds.
type Generator struct {
	client chatClient
	model  string
	logger *logging.Logger
}

// NewGenerator builds a reply generator. An empty API key yields a disabled
// generator that always returns "".
func NewGenerator(apiKey, model string, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	g := &Generator{model: model, logger: logger}
	if strings.TrimSpace(apiKey) != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

func newGeneratorWithClient(client chatClient, model string, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{client: client, model: model, logger: logger}
}

// Reply returns a reply to the latest message given the conversation so far,
// or "" on any failure.
func (g *Generator) Reply(ctx context.Context, conversation []history.Message, latest history.Message) string {
	if g == nil || g.client == nil {
		return ""
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   120,
		Messages:    buildMessages(conversation, latest),
	})
	if err != nil {
		g.logger.Warn("reply generation failed", "error", err)
		return ""
	}
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// buildMessages maps the scammer to the model's "user" role and the honeypot
// persona to "assistant".
func buildMessages(conversation []history.Message, latest history.Message) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}

	appendTurn := func(msg history.Message) {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return
		}
		role := openai.ChatMessageRoleAssistant
		if msg.Sender == history.SenderScammer {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: text})
	}

	for _, msg := range conversation {
		appendTurn(msg)
	}
	appendTurn(latest)

	return messages
}
