// Package script defines the load-test script data model: the phased load
// profile the orchestrator splits, and the settings that bound a single
// invocation's execution.
package script

// Script is a single unit of work handed to the orchestrator: a sequence of
// phases plus the control fields that track its place in the dispatch tree.
//
// A Script is created by the caller, split into chunk/remainder trees by the
// splitter, and consumed either by the embedded runner (leaf) or the
// peer-dispatch transport (remote). No Script outlives the completion
// callback of the invocation that created it.
type Script struct {
	Config Config `json:"config" yaml:"config"`

	// Split carries _split overrides for the resolved Settings (see Settings).
	Split *SplitOverrides `json:"_split,omitempty" yaml:"_split,omitempty"`

	// Genesis is the epoch-millisecond timestamp of the top-level invocation.
	// Immutable once set; propagated unchanged through all descendants.
	Genesis int64 `json:"_genesis,omitempty" yaml:"_genesis,omitempty"`

	// Start is the epoch-millisecond wall-clock time this chunk must begin
	// emitting load. May be assigned by a parent; never decreased by a child.
	Start int64 `json:"_start,omitempty" yaml:"_start,omitempty"`

	// Trace requests progress diagnostics from the orchestrator.
	Trace bool `json:"_trace,omitempty" yaml:"_trace,omitempty"`

	// Scenario describes what a leaf iteration actually does. Optional: a
	// script with no Scenario still validates and splits identically, and
	// the runner substitutes a sleep-only iteration.
	Scenario *Scenario `json:"scenario,omitempty" yaml:"scenario,omitempty"`
}

// Config carries the ordered phase sequence.
type Config struct {
	Phases []Phase `json:"phases" yaml:"phases"`
}

// HasStart reports whether Start has been assigned.
func (s *Script) HasStart() bool { return s.Start != 0 }

// HasGenesis reports whether Genesis has been assigned.
func (s *Script) HasGenesis() bool { return s.Genesis != 0 }

// Shape identifies which of the four phase variants a Phase represents.
type Shape int

const (
	// ShapeInvalid marks a phase whose field presence matches none of the
	// four recognized shapes.
	ShapeInvalid Shape = iota
	ShapeConstant
	ShapeRamp
	ShapeCount
	ShapePause
)

func (s Shape) String() string {
	switch s {
	case ShapeConstant:
		return "constant-rate"
	case ShapeRamp:
		return "ramp"
	case ShapeCount:
		return "count-over-duration"
	case ShapePause:
		return "pause"
	default:
		return "invalid"
	}
}

// Phase is one interval of the load curve. Its shape is encoded by which
// fields are present (nil pointer == absent). Name and Labels are
// auxiliary attributes a downstream runner may consume; they are
// preserved across every split and are never shape-defining.
type Phase struct {
	ArrivalRate  *float64 `json:"arrivalRate,omitempty" yaml:"arrivalRate,omitempty"`
	RampTo       *float64 `json:"rampTo,omitempty" yaml:"rampTo,omitempty"`
	Duration     *float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	ArrivalCount *float64 `json:"arrivalCount,omitempty" yaml:"arrivalCount,omitempty"`
	Pause        *float64 `json:"pause,omitempty" yaml:"pause,omitempty"`

	Name   string            `json:"name,omitempty" yaml:"name,omitempty"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Kind reports which of the four shapes this phase matches, or ShapeInvalid
// if its field presence matches none of them.
func (p Phase) Kind() Shape {
	switch {
	case p.Pause != nil:
		return ShapePause
	case p.ArrivalCount != nil && p.Duration != nil && p.ArrivalRate == nil && p.RampTo == nil:
		return ShapeCount
	case p.ArrivalRate != nil && p.RampTo != nil && p.Duration != nil:
		return ShapeRamp
	case p.ArrivalRate != nil && p.Duration != nil:
		return ShapeConstant
	default:
		return ShapeInvalid
	}
}

// f64 is a small helper for building *float64 literals in tests and
// constructors below.
func f64(v float64) *float64 { return &v }

// ConstantPhase builds a constant-rate phase.
func ConstantPhase(rate, duration float64) Phase {
	return Phase{ArrivalRate: f64(rate), Duration: f64(duration)}
}

// RampPhase builds a ramp phase.
func RampPhase(from, to, duration float64) Phase {
	return Phase{ArrivalRate: f64(from), RampTo: f64(to), Duration: f64(duration)}
}

// CountPhase builds a count-over-duration phase.
func CountPhase(count, duration float64) Phase {
	return Phase{ArrivalCount: f64(count), Duration: f64(duration)}
}

// PausePhase builds a pause phase.
func PausePhase(duration float64) Phase {
	return Phase{Pause: f64(duration)}
}

// Scenario describes the HTTP work a leaf iteration performs: the
// embedded runner needs something concrete to drive so it can be
// exercised end to end.
type Scenario struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	BaseURL  string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Requests []RequestSpec     `json:"requests,omitempty" yaml:"requests,omitempty"`
}

// RequestSpec is a single HTTP request issued during an iteration.
type RequestSpec struct {
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`

	Extract   []ExtractSpec   `json:"extract,omitempty" yaml:"extract,omitempty"`
	Assertion []AssertionSpec `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// ExtractSpec pulls a variable out of a response for use in later requests.
type ExtractSpec struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"` // "body", "header", "status"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// AssertionSpec validates one aspect of a response.
type AssertionSpec struct {
	Type      string `json:"type" yaml:"type"` // "status", "body", "header", "duration"
	Condition string `json:"condition" yaml:"condition"`
	Value     string `json:"value" yaml:"value"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}
