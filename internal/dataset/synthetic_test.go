package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSyntheticDeterministic(t *testing.T) {
	a := GenerateSynthetic(50, 42)
	b := GenerateSynthetic(50, 42)
	require.Len(t, a, 50)
	assert.Equal(t, a, b)
}

func TestGenerateSyntheticProvenance(t *testing.T) {
	for _, r := range GenerateSynthetic(20, 1) {
		assert.Equal(t, SourceSynthetic, r.Source)
	}
}

func TestGenerateSyntheticSurvivesCleaning(t *testing.T) {
	raw := GenerateSynthetic(500, 3)
	cleaned := NewPreparer().Clean(raw)
	// The generator stays inside the realistic ranges, so cleaning keeps
	// everything.
	assert.Len(t, cleaned, len(raw))
}
