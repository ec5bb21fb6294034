package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
)

func rawFixture() candidate.RawRecord {
	return candidate.RawRecord{
		"id":              "c1",
		"name":            "Ana Li",
		"location":        "Berlin",
		"confidentiality": "non-confidential",
		"tags":            []any{"golang", "backend"},
		"emails":          []any{"ana@example.com"},
		"parsed_resume": map[string]any{
			"positions": []any{
				map[string]any{
					"org": "Acme", "title": "Eng", "summary": "Built services",
					"start": "2019-01", "end": "2021-06",
				},
				map[string]any{
					"org": "Globex Corporation GmbH", "title": "Senior Eng",
					"summary": "Led a team", "start": "2021-07", "end": "",
				},
			},
			"schools": []any{
				map[string]any{
					"org": "TU Berlin Department of Computer Science",
					"degree": "Bachelor of Engineering, Computer Engineering",
					"field":  "", "start": "2012-10", "end": "2016-09",
				},
			},
		},
	}
}

func enrichmentFixture() *candidate.EnrichmentResult {
	return &candidate.EnrichmentResult{
		CurrentTitle:    "Senior Engineer",
		CurrentOrg:      "Globex",
		Seniority:       candidate.SenioritySenior,
		Skills:          []string{"Go", "PostgreSQL"},
		YearsExperience: 6,
		WorkedAtStartup: true,
		Positions: []candidate.CleanPosition{
			{Org: "Acme", Title: "Engineer", Summary: "Built services"},
			{Org: "Globex", Title: "Senior Engineer", Summary: "Led a team"},
		},
		Education: []candidate.CleanEducation{
			{School: "TU Berlin", Degree: "Bachelor of Engineering", Field: "Computer Engineering"},
		},
	}
}

func mustNormalize(t *testing.T, raw candidate.RawRecord) candidate.NormalizedInput {
	t.Helper()
	norm, err := Normalize(raw)
	require.NoError(t, err)
	return norm
}

func TestMergePreservesRawFields(t *testing.T) {
	raw := rawFixture()
	profile := Merge(raw, mustNormalize(t, raw), enrichmentFixture())

	assert.Equal(t, "c1", profile.ID)
	assert.Equal(t, "Ana Li", profile.Name)
	assert.Equal(t, "Berlin", profile.Location)

	// Non-superseded raw fields pass through untouched.
	assert.Equal(t, "non-confidential", profile.Attributes["confidentiality"])
	assert.Equal(t, []any{"golang", "backend"}, profile.Attributes["tags"])
	assert.Equal(t, []any{"ana@example.com"}, profile.Attributes["emails"])
	assert.NotContains(t, profile.Attributes, "id")
	assert.NotContains(t, profile.Attributes, "parsed_resume")
}

func TestMergeAppliesSupersededFields(t *testing.T) {
	raw := rawFixture()
	profile := Merge(raw, mustNormalize(t, raw), enrichmentFixture())

	assert.Equal(t, "Senior Engineer", profile.CurrentTitle)
	assert.Equal(t, "Globex", profile.CurrentOrg)
	assert.Equal(t, candidate.SenioritySenior, profile.Seniority)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, profile.Skills)
	assert.Equal(t, 6, profile.YearsExperience)
	assert.True(t, profile.WorkedAtStartup)

	// Cleaned text comes from enrichment.
	require.Len(t, profile.Positions, 2)
	assert.Equal(t, "Engineer", profile.Positions[0].Title)
	assert.Equal(t, "Globex", profile.Positions[1].Org)
	require.Len(t, profile.Education, 1)
	assert.Equal(t, "TU Berlin", profile.Education[0].School)
	assert.Equal(t, "Computer Engineering", profile.Education[0].Field)
}

func TestMergeDateProvenance(t *testing.T) {
	raw := rawFixture()
	profile := Merge(raw, mustNormalize(t, raw), enrichmentFixture())

	// Dates always trace back to the raw record at the same ordinal.
	assert.Equal(t, "2019-01", profile.Positions[0].Start)
	assert.Equal(t, "2021-06", profile.Positions[0].End)
	assert.Equal(t, "2021-07", profile.Positions[1].Start)
	assert.Equal(t, "", profile.Positions[1].End)
	assert.Equal(t, "2012-10", profile.Education[0].Start)
	assert.Equal(t, "2016-09", profile.Education[0].End)
}

func TestMergeEnrichmentListShorterThanRaw(t *testing.T) {
	raw := rawFixture()
	enr := enrichmentFixture()
	enr.Positions = enr.Positions[:1]

	profile := Merge(raw, mustNormalize(t, raw), enr)

	// Never drop a raw entry: the second position keeps its raw text and
	// its raw dates.
	require.Len(t, profile.Positions, 2)
	assert.Equal(t, "Globex Corporation GmbH", profile.Positions[1].Org)
	assert.Equal(t, "Senior Eng", profile.Positions[1].Title)
	assert.Equal(t, "2021-07", profile.Positions[1].Start)
}

func TestMergeEnrichmentListLongerThanRaw(t *testing.T) {
	raw := rawFixture()
	enr := enrichmentFixture()
	enr.Positions = append(enr.Positions, candidate.CleanPosition{
		Org: "Fabricated Inc", Title: "Made Up",
	})

	profile := Merge(raw, mustNormalize(t, raw), enr)

	// Never fabricate an entry (it would have no raw date to carry).
	require.Len(t, profile.Positions, 2)
	for _, p := range profile.Positions {
		assert.NotEqual(t, "Fabricated Inc", p.Org)
	}
}

func TestMergeEndToEndExample(t *testing.T) {
	raw := candidate.RawRecord{
		"id": "c1", "name": "Ana Li", "location": "Berlin",
		"parsed_resume": map[string]any{
			"positions": []any{
				map[string]any{"org": "Acme", "title": "Eng", "start": "2019-01", "end": "2021-06"},
			},
		},
	}
	enr := &candidate.EnrichmentResult{
		CurrentTitle: "Eng",
		Seniority:    candidate.SeniorityMid,
		Skills:       []string{"Go"},
	}

	profile := Merge(raw, mustNormalize(t, raw), enr)

	assert.Equal(t, candidate.SeniorityMid, profile.Seniority)
	assert.Equal(t, []string{"Go"}, profile.Skills)
	require.Len(t, profile.Positions, 1)
	assert.Equal(t, "2019-01", profile.Positions[0].Start)
	assert.Equal(t, "2021-06", profile.Positions[0].End)
}

func TestMergeNilSkillsBecomesEmptySlice(t *testing.T) {
	raw := rawFixture()
	enr := enrichmentFixture()
	enr.Skills = nil

	profile := Merge(raw, mustNormalize(t, raw), enr)
	assert.NotNil(t, profile.Skills)
	assert.Empty(t, profile.Skills)
}
