package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/pkg/apperror"
)

func TestNormalizeStripsDatesAndIdentifiers(t *testing.T) {
	norm, err := Normalize(rawFixture())
	require.NoError(t, err)

	assert.Equal(t, "Ana Li", norm.Name)
	assert.Equal(t, "Berlin", norm.Location)
	require.Len(t, norm.Positions, 2)
	assert.Equal(t, "Acme", norm.Positions[0].Org)
	require.Len(t, norm.Education, 1)

	// The serialized form the enricher sees must carry no id, dates or
	// contact fields.
	payload, err := json.Marshal(norm)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "c1")
	assert.NotContains(t, string(payload), "2019-01")
	assert.NotContains(t, string(payload), "ana@example.com")
}

func TestNormalizeMissingID(t *testing.T) {
	_, err := Normalize(candidate.RawRecord{"name": "No ID"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestNormalizeMissingName(t *testing.T) {
	_, err := Normalize(candidate.RawRecord{"id": "c9"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestNormalizeNoResume(t *testing.T) {
	norm, err := Normalize(candidate.RawRecord{"id": "c2", "name": "Bo"})
	require.NoError(t, err)
	assert.Empty(t, norm.Positions)
	assert.Empty(t, norm.Education)
}
