package candidate

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrMissingID       = errors.New("raw record has no identifier")
	ErrMissingName     = errors.New("raw record has no name")
)

// RawRecord is the source system's candidate record exactly as exported:
// an opaque key/value mapping. It is read-only; accessors below pull out the
// few fields the pipeline understands, everything else flows through into
// CanonicalProfile.Attributes untouched.
type RawRecord map[string]any

func (r RawRecord) ID() string       { return stringField(r, "id") }
func (r RawRecord) Name() string     { return stringField(r, "name") }
func (r RawRecord) Headline() string { return stringField(r, "headline") }
func (r RawRecord) Location() string { return stringField(r, "location") }

// Positions reads parsed_resume.positions. Entries keep their export order;
// the ordinal index is the only identity a position has.
func (r RawRecord) Positions() []RawPosition {
	entries := resumeSection(r, "positions")
	out := make([]RawPosition, 0, len(entries))
	for _, e := range entries {
		out = append(out, RawPosition{
			Org:     stringField(e, "org"),
			Title:   stringField(e, "title"),
			Summary: stringField(e, "summary"),
			Start:   stringField(e, "start"),
			End:     stringField(e, "end"),
		})
	}
	return out
}

// Education reads parsed_resume.schools.
func (r RawRecord) Education() []RawEducation {
	entries := resumeSection(r, "schools")
	out := make([]RawEducation, 0, len(entries))
	for _, e := range entries {
		out = append(out, RawEducation{
			Org:     stringField(e, "org"),
			Degree:  stringField(e, "degree"),
			Field:   stringField(e, "field"),
			Summary: stringField(e, "summary"),
			Start:   stringField(e, "start"),
			End:     stringField(e, "end"),
		})
	}
	return out
}

func (r RawRecord) Validate() error {
	if r.ID() == "" {
		return ErrMissingID
	}
	if r.Name() == "" {
		return ErrMissingName
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func resumeSection(r RawRecord, key string) []map[string]any {
	resume, ok := r["parsed_resume"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := resume[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

type RawPosition struct {
	Org     string
	Title   string
	Summary string
	Start   string
	End     string
}

type RawEducation struct {
	Org     string
	Degree  string
	Field   string
	Summary string
	Start   string
	End     string
}

// NormalizedInput is the reduced view an enrichment model is allowed to see:
// no identifier, no dates, no contact fields. Recomputed per record, never
// persisted.
type NormalizedInput struct {
	Name      string                `json:"name"`
	Headline  string                `json:"headline,omitempty"`
	Location  string                `json:"location,omitempty"`
	Positions []NormalizedPosition  `json:"positions"`
	Education []NormalizedEducation `json:"education"`
}

type NormalizedPosition struct {
	Org     string `json:"org"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

type NormalizedEducation struct {
	Org    string `json:"org"`
	Degree string `json:"degree"`
	Field  string `json:"field,omitempty"`
}

// CanonicalProfile is the merged, persisted unit. Typed fields are either
// raw fields the store indexes directly or enrichment-superseded values;
// Attributes carries every other raw field bit-identical to the export.
type CanonicalProfile struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Headline           string           `json:"headline,omitempty"`
	Location           string           `json:"location,omitempty"`
	LocationNormalized string           `json:"location_normalized,omitempty"`
	CurrentTitle       string           `json:"current_title"`
	CurrentOrg         string           `json:"current_org"`
	Seniority          Seniority        `json:"seniority"`
	Skills             []string         `json:"skills"`
	YearsExperience    int              `json:"years_experience"`
	WorkedAtStartup    bool             `json:"worked_at_startup"`
	Positions          []Position       `json:"positions"`
	Education          []EducationEntry `json:"education"`
	Attributes         map[string]any   `json:"attributes,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Position is owned by its profile and identified by (profile id, ordinal).
// Start/End always come from the raw record, never from enrichment.
type Position struct {
	Ordinal int    `json:"ordinal"`
	Org     string `json:"org"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type EducationEntry struct {
	Ordinal int    `json:"ordinal"`
	School  string `json:"school"`
	Degree  string `json:"degree"`
	Field   string `json:"field,omitempty"`
	Summary string `json:"summary,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type Repository interface {
	// Upsert writes the profile and both child lists in one transaction,
	// keyed by the natural identifier. Children are replaced wholesale.
	Upsert(ctx context.Context, p *CanonicalProfile) error
	// UpsertMany writes profiles in fixed-size windows. Each profile's
	// upsert is independently atomic; windows carry no atomicity.
	UpsertMany(ctx context.Context, profiles []*CanonicalProfile) error
	GetByID(ctx context.Context, id string) (*CanonicalProfile, error)
}
