package ingest

import (
	"time"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
)

// supersededKeys are the raw-record fields whose canonical value comes from
// a typed column or from the enrichment result instead of the attribute
// passthrough. Everything else in the raw record flows into
// CanonicalProfile.Attributes bit-identical.
var supersededKeys = map[string]bool{
	"id":            true,
	"name":          true,
	"headline":      true,
	"location":      true,
	"parsed_resume": true,
}

// Merge combines the raw record, its normalized view and the enrichment
// result into one canonical profile. Pure: no I/O, no mutation of inputs.
//
// Provenance rules:
//   - enrichment supersedes only its fixed field list (current title/org,
//     seniority, skills, years of experience, startup flag, cleaned
//     position/education text);
//   - date ranges come from the raw record, matched by ordinal, never from
//     enrichment;
//   - the output always has exactly one entry per raw entry. Where the
//     enrichment list is shorter the raw text is kept as-is; where it is
//     longer the excess is ignored rather than fabricating entries.
func Merge(raw candidate.RawRecord, norm candidate.NormalizedInput, enr *candidate.EnrichmentResult) *candidate.CanonicalProfile {
	rawPositions := raw.Positions()
	positions := make([]candidate.Position, len(rawPositions))
	for i, rp := range rawPositions {
		p := candidate.Position{
			Ordinal: i,
			Org:     rp.Org,
			Title:   rp.Title,
			Summary: rp.Summary,
			Start:   rp.Start,
			End:     rp.End,
		}
		if i < len(enr.Positions) {
			c := enr.Positions[i]
			p.Org = c.Org
			p.Title = c.Title
			p.Summary = c.Summary
		}
		positions[i] = p
	}

	rawEducation := raw.Education()
	education := make([]candidate.EducationEntry, len(rawEducation))
	for i, re := range rawEducation {
		e := candidate.EducationEntry{
			Ordinal: i,
			School:  re.Org,
			Degree:  re.Degree,
			Field:   re.Field,
			Summary: re.Summary,
			Start:   re.Start,
			End:     re.End,
		}
		if i < len(enr.Education) {
			c := enr.Education[i]
			e.School = c.School
			e.Degree = c.Degree
			e.Field = c.Field
		}
		education[i] = e
	}

	attributes := make(map[string]any)
	for k, v := range raw {
		if !supersededKeys[k] {
			attributes[k] = v
		}
	}

	skills := enr.Skills
	if skills == nil {
		skills = []string{}
	}

	return &candidate.CanonicalProfile{
		ID:              raw.ID(),
		Name:            raw.Name(),
		Headline:        norm.Headline,
		Location:        raw.Location(),
		CurrentTitle:    enr.CurrentTitle,
		CurrentOrg:      enr.CurrentOrg,
		Seniority:       enr.Seniority,
		Skills:          skills,
		YearsExperience: enr.YearsExperience,
		WorkedAtStartup: enr.WorkedAtStartup,
		Positions:       positions,
		Education:       education,
		Attributes:      attributes,
		UpdatedAt:       time.Now().UTC(),
	}
}
