package domain_test

import (
	"testing"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeProgress(t *testing.T) {
	assert.Equal(t, 0.0, domain.NormalizeProgress(0))
	assert.Equal(t, 0.0, domain.NormalizeProgress(-0.2))
	assert.InDelta(t, 0.5, domain.NormalizeProgress(0.45), 1e-9)
	assert.Equal(t, 1.0, domain.NormalizeProgress(0.9))
	assert.Equal(t, 1.0, domain.NormalizeProgress(1.0))

	assert.False(t, domain.IsStaged(0.89))
	assert.True(t, domain.IsStaged(0.9))
}

func TestPhase_Terminal(t *testing.T) {
	assert.False(t, domain.PhaseLoading.Terminal())
	assert.False(t, domain.PhaseStaged.Terminal())
	assert.True(t, domain.PhaseDone.Terminal())
	assert.True(t, domain.PhaseSuperseded.Terminal())
	assert.True(t, domain.PhaseFailed.Terminal())

	assert.Equal(t, domain.OutcomeCommitted, domain.OutcomeOf(domain.PhaseDone))
	assert.Equal(t, domain.Outcome(""), domain.OutcomeOf(domain.PhaseStaged))
}
