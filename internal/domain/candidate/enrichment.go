package candidate

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Seniority is an ordered scale; comparisons use Rank.
type Seniority string

const (
	SeniorityEntry     Seniority = "Entry"
	SeniorityJunior    Seniority = "Junior"
	SeniorityMid       Seniority = "Mid"
	SenioritySenior    Seniority = "Senior"
	SeniorityStaff     Seniority = "Staff"
	SeniorityPrincipal Seniority = "Principal"
	SeniorityExecutive Seniority = "Executive"
)

var seniorityRank = map[Seniority]int{
	SeniorityEntry:     0,
	SeniorityJunior:    1,
	SeniorityMid:       2,
	SenioritySenior:    3,
	SeniorityStaff:     4,
	SeniorityPrincipal: 5,
	SeniorityExecutive: 6,
}

func (s Seniority) Valid() bool {
	_, ok := seniorityRank[s]
	return ok
}

func (s Seniority) Rank() int {
	return seniorityRank[s]
}

// EnrichmentResult is the enrichment model's response. It carries no dates:
// date ranges always trace back to the raw record. A response that fails
// Validate is a processing failure for the record, never a data-model value.
type EnrichmentResult struct {
	CurrentTitle    string           `json:"current_title" validate:"required"`
	CurrentOrg      string           `json:"current_org"`
	Seniority       Seniority        `json:"seniority" validate:"required"`
	Skills          []string         `json:"skills"`
	YearsExperience int              `json:"years_experience" validate:"gte=0"`
	WorkedAtStartup bool             `json:"worked_at_startup"`
	Positions       []CleanPosition  `json:"positions" validate:"dive"`
	Education       []CleanEducation `json:"education" validate:"dive"`
}

// CleanPosition is an enrichment-normalized position: text only, no dates.
type CleanPosition struct {
	Org     string `json:"org" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Summary string `json:"summary"`
}

// CleanEducation mirrors the original model: school trimmed to the
// institution name, degree trimmed to the level, field extracted separately.
type CleanEducation struct {
	School string `json:"school" validate:"required"`
	Degree string `json:"degree"`
	Field  string `json:"field"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (e *EnrichmentResult) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("enrichment result failed schema validation: %w", err)
	}
	if !e.Seniority.Valid() {
		return fmt.Errorf("enrichment result has unknown seniority %q", e.Seniority)
	}
	return nil
}
