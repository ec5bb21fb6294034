package service

import (
	"context"

	"github.com/talentforge/candidate-os/internal/domain/query"
)

// QueryTranslator turns a free-text request into a candidate SQL query given
// a schema description. Its output is untrusted and must pass the safety
// gate before execution.
type QueryTranslator interface {
	Translate(ctx context.Context, request string, schema query.SchemaDescription) (string, error)
}
