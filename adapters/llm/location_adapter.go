package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/internal/config"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type openAILocationStandardizer struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

func NewOpenAILocationStandardizer(client *openai.Client, cfg config.Config, log logger.Logger) service.LocationStandardizer {
	log.Info("OpenAI Location Standardizer adapter initialized")
	return &openAILocationStandardizer{client: client, model: cfg.OpenAI.EnrichModel, log: log}
}

const locationSystemPrompt = `You standardize free-text locations. ` +
	`Respond with exactly "City, Country" in English for the given location. ` +
	`If the location cannot be identified, respond with exactly UNKNOWN. No explanation.`

func (a *openAILocationStandardizer) Standardize(ctx context.Context, location string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: locationSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Location: %s", location)},
		},
	})
	if err != nil {
		return "", apperror.NewTransient("location standardization request failed", err)
	}
	if len(resp.Choices) == 0 {
		return service.LocationUnknown, nil
	}
	return stripCodeFence(resp.Choices[0].Message.Content), nil
}
