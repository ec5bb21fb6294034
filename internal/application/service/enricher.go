package service

import (
	"context"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
)

// Enricher is the external enrichment capability. It sees only the
// normalized input (no identifiers, no dates, no contact info) and must
// return a schema-valid result; anything else is a record-level failure.
type Enricher interface {
	Enrich(ctx context.Context, in candidate.NormalizedInput) (*candidate.EnrichmentResult, error)
}
