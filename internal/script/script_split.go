package script

import "fmt"

// ScriptLength returns the script's total duration: the sum of every
// phase's length. If a phase is invalid, it returns the index of the first
// such phase and ok=false.
func ScriptLength(scr *Script) (total float64, invalidAt int, ok bool) {
	for i, p := range scr.Config.Phases {
		l := PhaseLength(p)
		if l < 0 {
			return 0, i, false
		}
		total += l
	}
	return total, -1, true
}

// ScriptWidth returns the script's peak arrival rate: the maximum width of
// any one phase (phases run sequentially, so they never contend for rate
// with each other). If a phase is invalid, it returns the index of the
// first such phase and ok=false.
func ScriptWidth(scr *Script) (max float64, invalidAt int, ok bool) {
	for i, p := range scr.Config.Phases {
		w := PhaseWidth(p)
		if w < 0 {
			return 0, i, false
		}
		if w > max {
			max = w
		}
	}
	return max, -1, true
}

// SplitScriptByLength splits scr at k seconds into a chunk spanning
// [0, k) and a remainder spanning [k, totalDuration). The remainder shares
// backing storage with scr: scr itself is mutated into the remainder, a
// clone-chunk/mutate-input convention that avoids a second full deep copy
// on every split.
func SplitScriptByLength(scr *Script, k float64) (chunk, remainder *Script, err error) {
	chunk = scr.Clone()
	chunk.Config.Phases = nil

	remainder = scr
	remainder.Start = 0 // re-computed by the orchestrator

	budget := k
	for budget > 0 {
		if len(remainder.Config.Phases) == 0 {
			return nil, nil, fmt.Errorf("script: split by length: k=%v exceeds total duration", k)
		}

		p := remainder.Config.Phases[0]
		length := PhaseLength(p)
		if length < 0 {
			return nil, nil, fmt.Errorf("script: split by length: phases[0] is invalid")
		}

		if length < budget {
			// Strict less-than: a phase landing exactly on the boundary is
			// still split, not moved whole.
			chunk.Config.Phases = append(chunk.Config.Phases, p)
			remainder.Config.Phases = remainder.Config.Phases[1:]
			budget -= length
			continue
		}

		split, serr := SplitPhaseByLength(p, budget)
		if serr != nil {
			return nil, nil, fmt.Errorf("script: split by length: %w", serr)
		}
		chunk.Config.Phases = append(chunk.Config.Phases, split.Chunk)
		remainder.Config.Phases[0] = split.Remainder
		budget = 0
	}

	return chunk, remainder, nil
}

// SplitScriptByWidth splits every phase in scr at the rate ceiling c,
// producing a chunk script (width <= c) and a remainder script carrying
// whatever rate exceeded it. Both outputs span the same total duration as
// scr and are independent deep copies.
func SplitScriptByWidth(scr *Script, c float64) (chunk, remainder *Script, err error) {
	chunk = scr.Clone()
	chunk.Config.Phases = nil
	remainder = scr.Clone()
	remainder.Config.Phases = nil

	for i, p := range scr.Config.Phases {
		ws, werr := SplitPhaseByWidth(p, c)
		if werr != nil {
			return nil, nil, fmt.Errorf("script: split by width: phases[%d]: %w", i, werr)
		}
		chunk.Config.Phases = append(chunk.Config.Phases, ws.Chunk...)
		remainder.Config.Phases = append(remainder.Config.Phases, ws.Remainder...)
	}

	return chunk, remainder, nil
}
