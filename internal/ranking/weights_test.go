package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	require.NoError(t, w.Validate())
}

func TestWeightVector_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *WeightVector)
		wantErr string
	}{
		{"sum too high", func(w *WeightVector) { w.Skill = 0.31 }, "must sum to 1.0"},
		{"sum too low", func(w *WeightVector) { w.Year = 0.0 }, "must sum to 1.0"},
		{"negative weight", func(w *WeightVector) { w.Semantic = -0.2; w.Skill = 0.7 }, "invalid weight semantic"},
		{"NaN weight", func(w *WeightVector) { w.Availability = math.NaN() }, "invalid weight availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights()
			tt.mutate(&w)
			err := w.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWeightVector_IsZero(t *testing.T) {
	assert.True(t, WeightVector{}.IsZero())
	assert.False(t, DefaultWeights().IsZero())
}
