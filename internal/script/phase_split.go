package script

import (
	"fmt"
	"math"
)

// PhaseSplit is the {chunk, remainder} result of splitting one phase.
type PhaseSplit struct {
	Chunk     Phase
	Remainder Phase
}

// WidthSplit is the {chunk, remainder} result of width-splitting one phase.
// Each side is a list because a single ramp may decompose into multiple
// sub-phases when it crosses the ceiling.
type WidthSplit struct {
	Chunk     []Phase
	Remainder []Phase
}

// rampFrom, constantFrom, countFrom and pauseFrom all deep-copy base (to
// preserve auxiliary attributes such as Name and Labels) and then overwrite
// exactly the shape-defining fields, nil-ing out everything else -- the
// null-sentinel deletion the source format relies on for shape
// discrimination.
func rampFrom(base Phase, from, to, duration float64) Phase {
	out := base.Clone()
	out.ArrivalRate, out.RampTo, out.Duration = f64(from), f64(to), f64(duration)
	out.ArrivalCount, out.Pause = nil, nil
	return out
}

func constantFrom(base Phase, rate, duration float64) Phase {
	out := base.Clone()
	out.ArrivalRate, out.Duration = f64(rate), f64(duration)
	out.RampTo, out.ArrivalCount, out.Pause = nil, nil, nil
	return out
}

func countFrom(base Phase, count, duration float64) Phase {
	out := base.Clone()
	out.ArrivalCount, out.Duration = f64(count), f64(duration)
	out.ArrivalRate, out.RampTo, out.Pause = nil, nil, nil
	return out
}

func pauseFrom(base Phase, duration float64) Phase {
	out := base.Clone()
	out.Pause = f64(duration)
	out.ArrivalRate, out.RampTo, out.ArrivalCount, out.Duration = nil, nil, nil, nil
	return out
}

// SplitPhaseByLength splits phase at k seconds into the phase covering
// [0, k) and the phase covering [k, length). k must be greater than 0 and
// at most PhaseLength(phase); k equal to the length yields a zero-length
// remainder.
func SplitPhaseByLength(phase Phase, k float64) (PhaseSplit, error) {
	length := PhaseLength(phase)
	switch phase.Kind() {
	case ShapeConstant:
		chunk := constantFrom(phase, *phase.ArrivalRate, k)
		remainder := constantFrom(phase, *phase.ArrivalRate, length-k)
		return PhaseSplit{Chunk: chunk, Remainder: remainder}, nil

	case ShapeRamp:
		ratio := k / *phase.Duration
		diff := *phase.RampTo - *phase.ArrivalRate
		// Known minor artifact: rounding here introduces a slope
		// discontinuity at the seam between chunk and remainder.
		seam := math.Round(*phase.ArrivalRate + diff*ratio)
		chunk := rampFrom(phase, *phase.ArrivalRate, seam, k)
		remainder := rampFrom(phase, seam, *phase.RampTo, length-k)
		return PhaseSplit{Chunk: chunk, Remainder: remainder}, nil

	case ShapeCount:
		ratio := k / *phase.Duration
		chunkCount := math.Round(*phase.ArrivalCount * ratio)
		chunk := countFrom(phase, chunkCount, k)
		remainder := countFrom(phase, *phase.ArrivalCount-chunkCount, length-k)
		return PhaseSplit{Chunk: chunk, Remainder: remainder}, nil

	case ShapePause:
		chunk := pauseFrom(phase, k)
		remainder := pauseFrom(phase, length-k)
		return PhaseSplit{Chunk: chunk, Remainder: remainder}, nil

	default:
		return PhaseSplit{}, fmt.Errorf("script: cannot length-split phase with unrecognized shape")
	}
}

// SplitPhaseByWidth splits phase at the rate ceiling c, producing the part
// of its arrival-rate curve at or below c (chunk) and the part above it
// (remainder), per shape.
func SplitPhaseByWidth(phase Phase, c float64) (WidthSplit, error) {
	switch phase.Kind() {
	case ShapeRamp:
		return splitRampByWidth(phase, c)
	case ShapeConstant:
		return splitConstantByWidth(phase, c)
	case ShapeCount:
		return splitCountByWidth(phase, c)
	case ShapePause:
		duration := *phase.Pause
		return WidthSplit{
			Chunk:     []Phase{pauseFrom(phase, duration)},
			Remainder: []Phase{pauseFrom(phase, duration)},
		}, nil
	default:
		return WidthSplit{}, fmt.Errorf("script: cannot width-split phase with unrecognized shape")
	}
}

func splitRampByWidth(phase Phase, c float64) (WidthSplit, error) {
	duration := *phase.Duration
	rate, rampTo := *phase.ArrivalRate, *phase.RampTo

	// Degenerate ramp: normalize to a flat line before reasoning about it.
	if rampTo == rate {
		return splitConstantByWidth(constantFrom(phase, rate, duration), c)
	}

	hi, lo := math.Max(rate, rampTo), math.Min(rate, rampTo)

	switch {
	case hi <= c:
		// Whole ramp fits under the ceiling.
		return WidthSplit{
			Chunk:     []Phase{rampFrom(phase, rate, rampTo, duration)},
			Remainder: []Phase{pauseFrom(phase, duration)},
		}, nil

	case lo >= c:
		// Whole ramp exceeds the ceiling.
		return WidthSplit{
			Chunk:     []Phase{constantFrom(phase, c, duration)},
			Remainder: []Phase{rampFrom(phase, rate-c, rampTo-c, duration)},
		}, nil
	}

	// The ramp crosses the ceiling at x.
	x, _, err := Intersection(phase, c)
	if err != nil {
		return WidthSplit{}, fmt.Errorf("script: width-split ramp: %w", err)
	}
	if x <= 0 || x >= duration {
		// Undefined at the boundary; treat as an internal error rather
		// than silently producing a degenerate split.
		return WidthSplit{}, fmt.Errorf("script: width-split ramp: intersection x=%v out of (0, %v)", x, duration)
	}

	if rate < rampTo {
		// Ramping up: crosses from below the ceiling to above it.
		return WidthSplit{
			Chunk: []Phase{
				rampFrom(phase, rate, c, x),
				constantFrom(phase, c, duration-x),
			},
			Remainder: []Phase{
				pauseFrom(phase, x),
				// The floor of 1 keeps the remainder ramp from starting at
				// a zero rate; the embedded engine itself accepts zero.
				rampFrom(phase, 1, rampTo-c, duration-x),
			},
		}, nil
	}

	// Ramping down: crosses from above the ceiling to below it.
	return WidthSplit{
		Chunk: []Phase{
			constantFrom(phase, c, x),
			rampFrom(phase, c, rampTo, duration-x),
		},
		Remainder: []Phase{
			rampFrom(phase, rate-c, 1, x),
			pauseFrom(phase, duration-x),
		},
	}, nil
}

func splitConstantByWidth(phase Phase, c float64) (WidthSplit, error) {
	duration := *phase.Duration
	rate := *phase.ArrivalRate

	if rate > c {
		return WidthSplit{
			Chunk:     []Phase{constantFrom(phase, c, duration)},
			Remainder: []Phase{constantFrom(phase, rate-c, duration)},
		}, nil
	}
	return WidthSplit{
		Chunk:     []Phase{constantFrom(phase, rate, duration)},
		Remainder: []Phase{pauseFrom(phase, duration)},
	}, nil
}

func splitCountByWidth(phase Phase, c float64) (WidthSplit, error) {
	duration := *phase.Duration
	count := *phase.ArrivalCount
	rps := count / duration

	if rps >= c {
		chunkCount := math.Floor(c * duration)
		return WidthSplit{
			Chunk:     []Phase{countFrom(phase, chunkCount, duration)},
			Remainder: []Phase{countFrom(phase, count-chunkCount, duration)},
		}, nil
	}
	return WidthSplit{
		Chunk:     []Phase{countFrom(phase, count, duration)},
		Remainder: []Phase{pauseFrom(phase, duration)},
	}, nil
}
