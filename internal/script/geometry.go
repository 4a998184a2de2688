package script

import (
	"errors"
	"math"
)

// ErrParallelLines is returned by Intersect when the two lines have no
// unique intersection. The caller must avoid this case by construction: a
// ramp line is never horizontal (arrivalRate != rampTo) when it is
// intersected against the horizontal rate ceiling.
var ErrParallelLines = errors.New("script: parallel lines have no intersection")

// PhaseLength returns the phase's length in seconds: duration if present,
// else pause, else -1 if neither is set (invalid).
func PhaseLength(p Phase) float64 {
	switch {
	case p.Duration != nil:
		return *p.Duration
	case p.Pause != nil:
		return *p.Pause
	default:
		return -1
	}
}

// PhaseWidth returns the phase's peak arrival rate in requests/second:
// max(arrivalRate, rampTo) for a ramp, arrivalRate for constant-rate,
// arrivalCount/duration for count-over-duration, 0 for a pause, or -1 if the
// phase shape can't be determined.
func PhaseWidth(p Phase) float64 {
	switch p.Kind() {
	case ShapeRamp:
		return math.Max(*p.ArrivalRate, *p.RampTo)
	case ShapeConstant:
		return *p.ArrivalRate
	case ShapeCount:
		if *p.Duration == 0 {
			return -1
		}
		return *p.ArrivalCount / *p.Duration
	case ShapePause:
		return 0
	default:
		return -1
	}
}

// Line is a 2D line in standard form Ax + By = C.
type Line struct {
	A, B, C float64
}

// LineThroughPoints returns the line through p1 and p2.
func LineThroughPoints(x1, y1, x2, y2 float64) Line {
	a := y2 - y1
	b := x1 - x2
	return Line{A: a, B: b, C: a*x1 + b*y1}
}

// Intersect returns the intersection point of l1 and l2 using Cramer's
// rule, rounded to the nearest integer. Returns ErrParallelLines when the
// determinant is zero.
func Intersect(l1, l2 Line) (x, y float64, err error) {
	det := l1.A*l2.B - l2.A*l1.B
	if det == 0 {
		return 0, 0, ErrParallelLines
	}
	x = (l2.B*l1.C - l1.B*l2.C) / det
	y = (l1.A*l2.C - l2.A*l1.C) / det
	return math.Round(x), math.Round(y), nil
}

// Intersection intersects a ramp phase's line -- (0, arrivalRate) to
// (duration, rampTo) -- with the horizontal ceiling y = ceiling. The caller
// is responsible for only calling this on phases whose ramp actually
// crosses the ceiling (arrivalRate and rampTo on opposite sides of it);
// otherwise the two lines are parallel only when the ramp itself is flat,
// which splitPhaseByWidth normalizes away before calling here.
func Intersection(p Phase, ceiling float64) (x, y float64, err error) {
	rampLine := LineThroughPoints(0, *p.ArrivalRate, *p.Duration, *p.RampTo)
	ceilingLine := LineThroughPoints(0, ceiling, 1, ceiling)
	return Intersect(rampLine, ceilingLine)
}
