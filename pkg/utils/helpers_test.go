package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.InDelta(t, 40.0, Clamp(12, 40, 100), 1e-9)
	assert.InDelta(t, 100.0, Clamp(130, 40, 100), 1e-9)
	assert.InDelta(t, 75.5, Clamp(75.5, 40, 100), 1e-9)
}

func TestRoundTo(t *testing.T) {
	assert.InDelta(t, 3.14, RoundTo(3.14159, 2), 1e-9)
	assert.InDelta(t, 3.0, RoundTo(2.5, 0), 1e-9)
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 0.0, Mean(), 1e-9)
	assert.InDelta(t, 2.0, Mean(1, 2, 3), 1e-9)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 0.0, PercentChange(50, 0), 1e-9)
	assert.InDelta(t, 25.0, PercentChange(125, 100), 1e-9)
	assert.InDelta(t, -50.0, PercentChange(50, 100), 1e-9)
}
