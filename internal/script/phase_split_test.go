package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPhaseByLengthConstant(t *testing.T) {
	p := ConstantPhase(20, 100)
	split, err := SplitPhaseByLength(p, 40)
	require.NoError(t, err)

	assert.Equal(t, ShapeConstant, split.Chunk.Kind())
	assert.Equal(t, 40.0, *split.Chunk.Duration)
	assert.Equal(t, 20.0, *split.Chunk.ArrivalRate)

	assert.Equal(t, 60.0, *split.Remainder.Duration)
	assert.Equal(t, 20.0, *split.Remainder.ArrivalRate)

	// Chunk + remainder duration reconstitutes the original length.
	assert.Equal(t, PhaseLength(p), *split.Chunk.Duration+*split.Remainder.Duration)
}

func TestSplitPhaseByLengthRamp(t *testing.T) {
	p := RampPhase(0, 100, 100)
	split, err := SplitPhaseByLength(p, 50)
	require.NoError(t, err)

	assert.Equal(t, ShapeRamp, split.Chunk.Kind())
	assert.Equal(t, 0.0, *split.Chunk.ArrivalRate)
	assert.Equal(t, 50.0, *split.Chunk.RampTo)
	assert.Equal(t, 50.0, *split.Chunk.Duration)

	assert.Equal(t, 50.0, *split.Remainder.ArrivalRate)
	assert.Equal(t, 100.0, *split.Remainder.RampTo)
	assert.Equal(t, 50.0, *split.Remainder.Duration)
}

func TestSplitPhaseByLengthCount(t *testing.T) {
	p := CountPhase(1000, 100)
	split, err := SplitPhaseByLength(p, 25)
	require.NoError(t, err)

	assert.Equal(t, 250.0, *split.Chunk.ArrivalCount)
	assert.Equal(t, 25.0, *split.Chunk.Duration)
	assert.Equal(t, 750.0, *split.Remainder.ArrivalCount)
	assert.Equal(t, 75.0, *split.Remainder.Duration)
}

func TestSplitPhaseByLengthPause(t *testing.T) {
	p := PausePhase(10)
	split, err := SplitPhaseByLength(p, 4)
	require.NoError(t, err)

	assert.Equal(t, 4.0, *split.Chunk.Pause)
	assert.Equal(t, 6.0, *split.Remainder.Pause)
}

func TestSplitPhaseByLengthPreservesAuxiliaryFields(t *testing.T) {
	p := ConstantPhase(10, 30)
	p.Name = "steady"
	p.Labels = map[string]string{"k": "v"}

	split, err := SplitPhaseByLength(p, 10)
	require.NoError(t, err)
	assert.Equal(t, "steady", split.Chunk.Name)
	assert.Equal(t, "steady", split.Remainder.Name)
	assert.Equal(t, "v", split.Chunk.Labels["k"])
}

func TestSplitPhaseByWidthConstantUnderCeiling(t *testing.T) {
	p := ConstantPhase(10, 30)
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	require.Len(t, ws.Chunk, 1)
	assert.Equal(t, 10.0, *ws.Chunk[0].ArrivalRate)
	require.Len(t, ws.Remainder, 1)
	assert.Equal(t, ShapePause, ws.Remainder[0].Kind())
}

func TestSplitPhaseByWidthConstantOverCeiling(t *testing.T) {
	p := ConstantPhase(40, 30)
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	assert.Equal(t, 25.0, *ws.Chunk[0].ArrivalRate)
	assert.Equal(t, 15.0, *ws.Remainder[0].ArrivalRate)
	assert.Equal(t, PhaseWidth(p), *ws.Chunk[0].ArrivalRate+*ws.Remainder[0].ArrivalRate)
}

func TestSplitPhaseByWidthRampUnderCeiling(t *testing.T) {
	p := RampPhase(5, 20, 60)
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	require.Len(t, ws.Chunk, 1)
	assert.Equal(t, ShapeRamp, ws.Chunk[0].Kind())
	require.Len(t, ws.Remainder, 1)
	assert.Equal(t, ShapePause, ws.Remainder[0].Kind())
}

func TestSplitPhaseByWidthRampOverCeiling(t *testing.T) {
	p := RampPhase(30, 40, 60)
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	require.Len(t, ws.Chunk, 1)
	assert.Equal(t, ShapeConstant, ws.Chunk[0].Kind())
	assert.Equal(t, 25.0, *ws.Chunk[0].ArrivalRate)
	require.Len(t, ws.Remainder, 1)
	assert.Equal(t, ShapeRamp, ws.Remainder[0].Kind())
	assert.Equal(t, 5.0, *ws.Remainder[0].ArrivalRate)
	assert.Equal(t, 15.0, *ws.Remainder[0].RampTo)
}

func TestSplitPhaseByWidthRampCrossingUp(t *testing.T) {
	p := RampPhase(0, 100, 100)
	ws, err := SplitPhaseByWidth(p, 50)
	require.NoError(t, err)

	require.Len(t, ws.Chunk, 2)
	assert.Equal(t, ShapeRamp, ws.Chunk[0].Kind())
	assert.Equal(t, 0.0, *ws.Chunk[0].ArrivalRate)
	assert.Equal(t, 50.0, *ws.Chunk[0].RampTo)
	assert.Equal(t, ShapeConstant, ws.Chunk[1].Kind())
	assert.Equal(t, 50.0, *ws.Chunk[1].ArrivalRate)

	require.Len(t, ws.Remainder, 2)
	assert.Equal(t, ShapePause, ws.Remainder[0].Kind())
	assert.Equal(t, ShapeRamp, ws.Remainder[1].Kind())
	assert.Equal(t, 1.0, *ws.Remainder[1].ArrivalRate)
	assert.Equal(t, 50.0, *ws.Remainder[1].RampTo)

	totalChunkDuration := *ws.Chunk[0].Duration + *ws.Chunk[1].Duration
	totalRemainderDuration := *ws.Remainder[0].Pause + *ws.Remainder[1].Duration
	assert.Equal(t, 100.0, totalChunkDuration)
	assert.Equal(t, 100.0, totalRemainderDuration)
}

func TestSplitPhaseByWidthRampCrossingDown(t *testing.T) {
	p := RampPhase(100, 0, 100)
	ws, err := SplitPhaseByWidth(p, 50)
	require.NoError(t, err)

	require.Len(t, ws.Chunk, 2)
	assert.Equal(t, ShapeConstant, ws.Chunk[0].Kind())
	assert.Equal(t, ShapeRamp, ws.Chunk[1].Kind())

	require.Len(t, ws.Remainder, 2)
	assert.Equal(t, ShapeRamp, ws.Remainder[0].Kind())
	assert.Equal(t, ShapePause, ws.Remainder[1].Kind())
}

func TestSplitPhaseByWidthCount(t *testing.T) {
	p := CountPhase(6000, 100) // 60 req/s
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	assert.Equal(t, 2500.0, *ws.Chunk[0].ArrivalCount)
	assert.Equal(t, 3500.0, *ws.Remainder[0].ArrivalCount)
}

func TestSplitPhaseByWidthCountUnderCeiling(t *testing.T) {
	p := CountPhase(100, 100) // 1 req/s
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	assert.Equal(t, 100.0, *ws.Chunk[0].ArrivalCount)
	assert.Equal(t, ShapePause, ws.Remainder[0].Kind())
}

func TestSplitPhaseByWidthPause(t *testing.T) {
	p := PausePhase(10)
	ws, err := SplitPhaseByWidth(p, 25)
	require.NoError(t, err)

	assert.Equal(t, 10.0, *ws.Chunk[0].Pause)
	assert.Equal(t, 10.0, *ws.Remainder[0].Pause)
}
