package script

import "encoding/json"

// Clone deep-copies a Script by serializing it and parsing the result
// back. This is a correctness requirement, not a convenience: every
// field -- including auxiliary Phase attributes a downstream runner may
// rely on -- must survive a split untouched.
func (s *Script) Clone() *Script {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		// Script is always produced by our own unmarshalers or constructors;
		// a marshal failure here means a programmer error (e.g. a NaN in a
		// float field), not a runtime condition callers can recover from.
		panic("script: clone: " + err.Error())
	}
	clone := &Script{}
	if err := json.Unmarshal(raw, clone); err != nil {
		panic("script: clone: " + err.Error())
	}
	return clone
}

// Clone deep-copies a single Phase the same way.
func (p Phase) Clone() Phase {
	raw, err := json.Marshal(p)
	if err != nil {
		panic("script: clone phase: " + err.Error())
	}
	var clone Phase
	if err := json.Unmarshal(raw, &clone); err != nil {
		panic("script: clone phase: " + err.Error())
	}
	return clone
}

// ClonePhases deep-copies a phase slice.
func ClonePhases(phases []Phase) []Phase {
	out := make([]Phase, len(phases))
	for i, p := range phases {
		out[i] = p.Clone()
	}
	return out
}
