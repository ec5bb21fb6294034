package ingest

import (
	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/pkg/apperror"
)

// Normalize derives the enrichable subset of a raw record: name, headline,
// location and the position/education history with dates and contact fields
// stripped. The raw record itself is never mutated.
func Normalize(raw candidate.RawRecord) (candidate.NormalizedInput, error) {
	if err := raw.Validate(); err != nil {
		return candidate.NormalizedInput{}, apperror.NewInvalidInput("raw record is missing required fields", err)
	}

	rawPositions := raw.Positions()
	positions := make([]candidate.NormalizedPosition, 0, len(rawPositions))
	for _, p := range rawPositions {
		positions = append(positions, candidate.NormalizedPosition{
			Org:     p.Org,
			Title:   p.Title,
			Summary: p.Summary,
		})
	}

	rawEducation := raw.Education()
	education := make([]candidate.NormalizedEducation, 0, len(rawEducation))
	for _, e := range rawEducation {
		education = append(education, candidate.NormalizedEducation{
			Org:    e.Org,
			Degree: e.Degree,
			Field:  e.Field,
		})
	}

	return candidate.NormalizedInput{
		Name:      raw.Name(),
		Headline:  raw.Headline(),
		Location:  raw.Location(),
		Positions: positions,
		Education: education,
	}, nil
}
