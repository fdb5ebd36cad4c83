package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestReconcileScore(t *testing.T) {
	tests := []struct {
		name     string
		stored   *float64
		computed *float64
		want     float64
	}{
		{"stored wins over computed", ptr(0.8), ptr(0.3), 0.8},
		{"nil stored falls back to computed", nil, ptr(0.3), 0.3},
		{"zero stored is the no-judgment sentinel", ptr(0), ptr(0.3), 0.3},
		{"nil stored and nil computed", nil, nil, 0},
		{"stored clamped to upper bound", ptr(1.7), ptr(0.3), 1.0},
		{"computed clamped to lower bound", nil, ptr(-0.2), 0},
		{"computed clamped to upper bound", ptr(0), ptr(1.2), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReconcileScore(tt.stored, tt.computed), 1e-9)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.42, Clamp01(0.42))
}
