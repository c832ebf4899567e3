package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/sashabaranov/go-openai"
)

var roles = map[entity.AdvisoryRole]string{
	entity.AdvisoryRoleSystem:    openai.ChatMessageRoleSystem,
	entity.AdvisoryRoleUser:      openai.ChatMessageRoleUser,
	entity.AdvisoryRoleAssistant: openai.ChatMessageRoleAssistant,
}

// Client asks an OpenAI-compatible chat completions endpoint for the next move.
type Client struct {
	logger *slog.Logger
	api    *openai.Client
	model  string
}

func NewClient(logger *slog.Logger, conf config.Advisor) *Client {
	clientConfig := openai.DefaultConfig(conf.APIKey)
	if conf.BaseURL != "" {
		clientConfig.BaseURL = conf.BaseURL
	}

	return &Client{
		logger: logger.With("component", "advisory_client"),
		api:    openai.NewClientWithConfig(clientConfig),
		model:  conf.Model,
	}
}

func (that *Client) Complete(ctx context.Context, messages []entity.AdvisoryMessage) (string, error) {
	log := that.logger.With("method", "Complete")

	request := openai.ChatCompletionRequest{
		Model:    that.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}

	for _, message := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    roles[message.Role],
			Content: message.Content,
		})
	}

	response, err := that.api.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrAdvisoryUnavailable, err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", apperror.ErrAdvisoryUnavailable)
	}

	reply := strings.TrimSpace(response.Choices[0].Message.Content)
	log.Debug("completion received", "model", response.Model, "reply", reply)

	return reply, nil
}

// Unavailable is the collaborator used when no API key is configured. Every
// call fails, so the computer seat always plays the fallback cell.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, []entity.AdvisoryMessage) (string, error) {
	return "", apperror.ErrAdvisoryUnavailable
}
