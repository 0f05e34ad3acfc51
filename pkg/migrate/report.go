package migrate

import "github.com/cuemby/vmmv/pkg/types"

// Report describes a finished or stopped migration
type Report struct {
	RunID    string
	OldID    types.UnitID
	NewID    types.UnitID
	UnitType types.UnitType
	DryRun   bool

	// Stage is the last stage reached; StageDone when the run completed
	Stage Stage

	// Definition is the rewritten definition text
	Definition string

	Items []types.Item
}

// Skipped returns items that were left untouched because they were absent
func (r *Report) Skipped() []types.Item {
	return r.filter(types.OutcomeSkipped)
}

// Failed returns items whose rename was attempted and failed
func (r *Report) Failed() []types.Item {
	return r.filter(types.OutcomeFailed)
}

// Unverified returns items renamed by a command whose effect could not be
// confirmed
func (r *Report) Unverified() []types.Item {
	return r.filter(types.OutcomeUnverified)
}

// Degraded returns every item that needs operator attention, in order
func (r *Report) Degraded() []types.Item {
	var out []types.Item
	for _, item := range r.Items {
		if item.Degraded() {
			out = append(out, item)
		}
	}
	return out
}

// Clean reports whether the run completed with no item needing attention
func (r *Report) Clean() bool {
	if r.Stage != StageDone {
		return false
	}
	for _, item := range r.Items {
		if item.Degraded() {
			return false
		}
	}
	return true
}

func (r *Report) filter(outcome types.Outcome) []types.Item {
	var out []types.Item
	for _, item := range r.Items {
		if item.Outcome == outcome {
			out = append(out, item)
		}
	}
	return out
}
