package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/internal/config"
	"github.com/talentforge/candidate-os/internal/domain/query"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type openAIQueryTranslator struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

func NewOpenAIQueryTranslator(client *openai.Client, cfg config.Config, log logger.Logger) service.QueryTranslator {
	log.Info("OpenAI Query Translator adapter initialized")
	return &openAIQueryTranslator{client: client, model: cfg.OpenAI.QueryModel, log: log}
}

const translatorSystemPrompt = "You translate natural-language requests about a candidate database " +
	"into a single PostgreSQL SELECT statement. Use only the tables and columns provided. " +
	"Never produce INSERT, UPDATE, DELETE, DDL or multiple statements. " +
	"Respond with the SQL statement only, no explanation, no markdown."

// Translate returns the model's candidate SQL verbatim (minus markdown
// fences). The caller is responsible for gating it before execution.
func (a *openAIQueryTranslator) Translate(ctx context.Context, request string, schema query.SchemaDescription) (string, error) {
	prompt := fmt.Sprintf("Schema:\n%s\nRequest: %s", schema.Describe(), request)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: translatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", apperror.NewTransient("query translation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperror.NewTransient("query translation returned no choices", nil)
	}

	return stripCodeFence(resp.Choices[0].Message.Content), nil
}
