package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestEstimateCosts(t *testing.T) {
	input, output, total, ok := EstimateCosts("openai", "gpt-4o", intPtr(1_000_000), intPtr(500_000))
	require.True(t, ok)
	assert.InDelta(t, 2.50, input, 1e-9)
	assert.InDelta(t, 5.00, output, 1e-9)
	assert.InDelta(t, 7.50, total, 1e-9)
}

func TestEstimateCostsDatedModel(t *testing.T) {
	_, _, total, ok := EstimateCosts("openai", "gpt-4o-mini-2024-07-18", intPtr(100_000), intPtr(100_000))
	require.True(t, ok)
	assert.InDelta(t, 0.075, total, 1e-9)
}

func TestEstimateCostsUnknown(t *testing.T) {
	_, _, _, ok := EstimateCosts("openai", "some-unknown-model", intPtr(100), intPtr(100))
	assert.False(t, ok)

	_, _, _, ok = EstimateCosts("anthropic", "gpt-4o", intPtr(100), intPtr(100))
	assert.False(t, ok)

	_, _, _, ok = EstimateCosts("openai", "gpt-4o", nil, intPtr(100))
	assert.False(t, ok)
}
