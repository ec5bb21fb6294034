package ingest

import (
	"context"
	"time"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
)

// Step names the pipeline stage a record was in when it failed.
type Step string

const (
	StepNormalizing Step = "normalizing"
	StepEnriching   Step = "enriching"
	// StepMerging never appears in a stored failure today: merging is a
	// total function and a malformed enrichment payload fails schema
	// validation at the enriching step. Kept so checkpoint rows stay
	// readable if a merge precondition is ever introduced.
	StepMerging    Step = "merging"
	StepPersisting Step = "persisting"
)

type RecordStatus string

const (
	StatusPersisted RecordStatus = "persisted"
	StatusFailed    RecordStatus = "failed"
)

// Batch is the unit of work handed to the processor. The transport that
// delivers it (kafka, HTTP, a one-off script) is not the processor's concern.
type Batch struct {
	ID      string
	Records []candidate.RawRecord
}

// RecordFailure captures the failed step and the underlying cause for one
// record. Failures never abort the batch.
type RecordFailure struct {
	ID     string `json:"id"`
	Step   Step   `json:"step"`
	Reason string `json:"reason"`
}

// BatchReport is the sole externally observable summary of a run. Every
// input identifier appears exactly once, in Persisted or in Failed.
type BatchReport struct {
	BatchID    string          `json:"batch_id"`
	Persisted  []string        `json:"persisted"`
	Failed     []RecordFailure `json:"failed"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Checkpoint is the durable per-record outcome for a batch. A record is
// checkpointed the moment it reaches a terminal state, so a crash never
// loses more than the single in-flight record.
type Checkpoint struct {
	BatchID   string
	RecordID  string
	Status    RecordStatus
	Step      Step
	Reason    string
	UpdatedAt time.Time
}

// ProfileStore is the processor's view of durable storage.
type ProfileStore interface {
	// Save upserts the profile and writes its persisted checkpoint in the
	// same transaction.
	Save(ctx context.Context, p *candidate.CanonicalProfile, batchID string) error
	// PersistedIDs returns the identifiers already persisted for a batch,
	// so a resumed run skips them without re-invoking the enricher.
	PersistedIDs(ctx context.Context, batchID string) (map[string]bool, error)
	// RecordFailure durably records a failed record. Best effort: a failure
	// to write the checkpoint is logged, not fatal.
	RecordFailure(ctx context.Context, batchID string, f RecordFailure) error
	// Healthy reports whether the store is reachable. Processing treats an
	// unreachable store as fatal to the whole batch.
	Healthy(ctx context.Context) error
}

// Reporter publishes the final batch report.
type Reporter interface {
	PublishReport(ctx context.Context, report *BatchReport) error
}
