package script

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError is a single validation failure, anchored to the phase
// index it came from (index -1 for script-level errors).
type ValidationError struct {
	PhaseIndex int
	Field      string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.PhaseIndex < 0 {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error on phases[%d].%s: %s", e.PhaseIndex, e.Field, e.Message)
}

// ValidationErrors collects every failure found in a single pass:
// Validate never stops at the first error, so an operator sees the whole
// list of what's wrong at once.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func (e *ValidationErrors) add(phaseIndex int, field, message string) {
	e.Errors = append(e.Errors, &ValidationError{PhaseIndex: phaseIndex, Field: field, Message: message})
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationErrors) HasErrors() bool { return len(e.Errors) > 0 }

// Validate checks a Script's structural and numeric well-formedness:
// every phase must match one of the four recognized shapes (Kind takes the
// first match, so a phase carrying fields of two shapes is not rejected
// here; ValidateSchema's oneOf rejects it), every
// rate/count field must be non-negative, and every phase's duration (or
// pause) must be strictly positive -- a zero-length phase contributes
// nothing to the load curve and is rejected rather than silently no-op'd.
//
// Each error carries an explicit PhaseIndex field rather than overloading
// a bare int return, so phase 0 is never ambiguous with "no error".
func (s *Script) Validate() error {
	errs := &ValidationErrors{}

	if len(s.Config.Phases) == 0 {
		errs.add(-1, "config.phases", "at least one phase is required")
	}

	for i, p := range s.Config.Phases {
		validatePhase(i, p, errs)
	}

	if s.Split != nil {
		validateSplitOverrides(s.Split, errs)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateWithSettings runs Validate and additionally enforces the
// script-level ceilings from the resolved Settings: total duration against
// MaxScriptDurationInSeconds and every phase's width against
// MaxScriptRequestsPerSecond. This is the full check the orchestrator
// runs before it looks at a script at all. The CLI's `validate`
// subcommand runs it too, with Settings resolved from the script's own
// _split block.
func (s *Script) ValidateWithSettings(settings Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	errs := &ValidationErrors{}

	total, invalidAt, ok := ScriptLength(s)
	if !ok {
		// Validate already rejected unrecognized shapes; this should be
		// unreachable, but report it the same way if it ever isn't.
		errs.add(invalidAt, "", "phase has invalid length")
	} else if total > settings.MaxScriptDurationInSeconds {
		errs.add(-1, "config.phases", fmt.Sprintf(
			"total duration %.0fs exceeds maxScriptDurationInSeconds %.0f", total, settings.MaxScriptDurationInSeconds))
	}

	for i, p := range s.Config.Phases {
		w := PhaseWidth(p)
		if w < 0 {
			errs.add(i, "", "phase has invalid width")
			continue
		}
		if w > settings.MaxScriptRequestsPerSecond {
			errs.add(i, "", fmt.Sprintf(
				"width %.2f exceeds maxScriptRequestsPerSecond %.2f", w, settings.MaxScriptRequestsPerSecond))
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validatePhase(i int, p Phase, errs *ValidationErrors) {
	switch p.Kind() {
	case ShapeConstant:
		if *p.ArrivalRate < 0 {
			errs.add(i, "arrivalRate", "must not be negative")
		}
		if *p.Duration <= 0 {
			errs.add(i, "duration", "must be greater than 0")
		}

	case ShapeRamp:
		if *p.ArrivalRate < 0 {
			errs.add(i, "arrivalRate", "must not be negative")
		}
		if *p.RampTo < 0 {
			errs.add(i, "rampTo", "must not be negative")
		}
		if *p.Duration <= 0 {
			errs.add(i, "duration", "must be greater than 0 for a ramp")
		}

	case ShapeCount:
		if *p.ArrivalCount < 0 {
			errs.add(i, "arrivalCount", "must not be negative")
		}
		if *p.Duration <= 0 {
			errs.add(i, "duration", "must be greater than 0 for a count-over-duration phase")
		}

	case ShapePause:
		if *p.Pause <= 0 {
			errs.add(i, "pause", "must be greater than 0")
		}

	default:
		errs.add(i, "", fmt.Sprintf("phase matches no recognized shape (got fields: %s)", presentFields(p)))
	}
}

// ceilingField bounds a _split override to a positive integer no greater
// than defaultCeiling: it may tighten the default ceiling but never
// loosen past it, and never in fractional units.
func ceilingField(errs *ValidationErrors, field string, v *float64, defaultCeiling float64) {
	if v == nil {
		return
	}
	if *v <= 0 || *v != math.Trunc(*v) {
		errs.add(-1, "_split."+field, "must be a positive integer")
		return
	}
	if *v > defaultCeiling {
		errs.add(-1, "_split."+field, fmt.Sprintf("must not exceed the default ceiling of %v", defaultCeiling))
	}
}

func validateSplitOverrides(o *SplitOverrides, errs *ValidationErrors) {
	ceilingField(errs, "maxScriptDurationInSeconds", o.MaxScriptDurationInSeconds, DefaultSettings.MaxScriptDurationInSeconds)
	ceilingField(errs, "maxScriptRequestsPerSecond", o.MaxScriptRequestsPerSecond, DefaultSettings.MaxScriptRequestsPerSecond)
	ceilingField(errs, "maxChunkDurationInSeconds", o.MaxChunkDurationInSeconds, DefaultSettings.MaxChunkDurationInSeconds)
	ceilingField(errs, "maxChunkRequestsPerSecond", o.MaxChunkRequestsPerSecond, DefaultSettings.MaxChunkRequestsPerSecond)
	if o.TimeBufferInMilliseconds != nil && *o.TimeBufferInMilliseconds < 0 {
		errs.add(-1, "_split.timeBufferInMilliseconds", "must not be negative")
	}

	if o.MaxChunkDurationInSeconds != nil && o.MaxScriptDurationInSeconds != nil &&
		*o.MaxChunkDurationInSeconds > *o.MaxScriptDurationInSeconds {
		errs.add(-1, "_split.maxChunkDurationInSeconds", "must not exceed maxScriptDurationInSeconds")
	}
	if o.MaxChunkRequestsPerSecond != nil && o.MaxScriptRequestsPerSecond != nil &&
		*o.MaxChunkRequestsPerSecond > *o.MaxScriptRequestsPerSecond {
		errs.add(-1, "_split.maxChunkRequestsPerSecond", "must not exceed maxScriptRequestsPerSecond")
	}
}

func presentFields(p Phase) string {
	var fields []string
	if p.ArrivalRate != nil {
		fields = append(fields, "arrivalRate")
	}
	if p.RampTo != nil {
		fields = append(fields, "rampTo")
	}
	if p.Duration != nil {
		fields = append(fields, "duration")
	}
	if p.ArrivalCount != nil {
		fields = append(fields, "arrivalCount")
	}
	if p.Pause != nil {
		fields = append(fields, "pause")
	}
	if len(fields) == 0 {
		return "none"
	}
	return strings.Join(fields, ", ")
}
