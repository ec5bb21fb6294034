package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/internal/config"
	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type openAIEnricher struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

func NewOpenAIEnricher(client *openai.Client, cfg config.Config, log logger.Logger) service.Enricher {
	log.Info("OpenAI Enricher adapter initialized")
	return &openAIEnricher{client: client, model: cfg.OpenAI.EnrichModel, log: log}
}

const enricherSystemPrompt = "Extract structured profile information from candidate data. " +
	"Respond with a single JSON object and nothing else. All output text must be in English."

const enricherPromptTemplate = `Based on the following candidate data, extract and infer the profile information.

Candidate data:
%s

Return a JSON object with:
- current_title: current job title from the most recent position
- current_org: current organization from the most recent position
- seniority: one of Entry, Junior, Mid, Senior, Staff, Principal, Executive, based on titles and experience
- skills: list of all skills including programming languages inferred from experience descriptions
- years_experience: total years of experience calculated from the work history
- worked_at_startup: boolean indicating whether they worked at startups
- positions: the input positions in the same order, each with cleaned org, title and summary
- education: the input education entries in the same order, each with:
  * school: just the institution name (e.g. "Stanford", not "Stanford University Department of Computer Science")
  * degree: just the degree level (e.g. "Bachelor of Engineering")
  * field: the field of study`

// Enrich sends the normalized subset (never the raw record) to the model and
// validates the response strictly. A response that fails validation is a
// processing failure for the record, not a usable value.
func (a *openAIEnricher) Enrich(ctx context.Context, in candidate.NormalizedInput) (*candidate.EnrichmentResult, error) {
	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return nil, apperror.NewInternal("cannot encode normalized input", err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: enricherSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(enricherPromptTemplate, payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, apperror.NewTransient("enrichment request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperror.NewTransient("enrichment returned no choices", nil)
	}

	var result candidate.EnrichmentResult
	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, apperror.NewInvalidInput("enrichment response is not valid JSON", err)
	}
	if err := result.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("enrichment response failed schema validation", err)
	}
	return &result, nil
}
