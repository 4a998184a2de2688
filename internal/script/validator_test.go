package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedScript(t *testing.T) {
	s := &Script{Config: Config{Phases: []Phase{
		ConstantPhase(10, 30),
		RampPhase(10, 50, 60),
		CountPhase(500, 20),
		PausePhase(5),
	}}}

	assert.NoError(t, s.Validate())
}

func TestValidateRejectsEmptyPhaseList(t *testing.T) {
	s := &Script{}
	err := s.Validate()
	require.Error(t, err)

	var ve *ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, -1, ve.Errors[0].PhaseIndex)
}

func TestValidateRejectsUnrecognizedShapeAtItsIndex(t *testing.T) {
	s := &Script{Config: Config{Phases: []Phase{
		ConstantPhase(10, 30),
		{RampTo: f64(10)}, // rampTo alone matches no shape
	}}}

	err := s.Validate()
	require.Error(t, err)

	var ve *ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, 1, ve.Errors[0].PhaseIndex)
}

func TestValidateRejectsNegativeFields(t *testing.T) {
	s := &Script{Config: Config{Phases: []Phase{
		{ArrivalRate: f64(-1), Duration: f64(30)},
	}}}

	err := s.Validate()
	require.Error(t, err)

	var ve *ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "arrivalRate", ve.Errors[0].Field)
}

func TestValidateSplitOverrides(t *testing.T) {
	s := &Script{
		Config: Config{Phases: []Phase{ConstantPhase(10, 30)}},
		Split: &SplitOverrides{
			MaxChunkDurationInSeconds:  f64(500),
			MaxScriptDurationInSeconds: f64(100),
		},
	}

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxChunkDurationInSeconds")
}

func TestResolveSettingsAppliesOverridesOverDefaults(t *testing.T) {
	resolved := ResolveSettings(&SplitOverrides{MaxChunkRequestsPerSecond: f64(10)})
	assert.Equal(t, 10.0, resolved.MaxChunkRequestsPerSecond)
	assert.Equal(t, DefaultSettings.MaxChunkDurationInSeconds, resolved.MaxChunkDurationInSeconds)
}

func TestResolveSettingsNilReturnsDefaults(t *testing.T) {
	assert.Equal(t, DefaultSettings, ResolveSettings(nil))
}
