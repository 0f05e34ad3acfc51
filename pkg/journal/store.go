package journal

import (
	"time"

	"github.com/cuemby/vmmv/pkg/types"
)

// State is the final state of a run
type State string

const (
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// PreImage is the content of a file before the run modified it
type PreImage struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Run is the journal entry of one migration
type Run struct {
	ID          string         `json:"id"`
	OldID       types.UnitID   `json:"old_id"`
	NewID       types.UnitID   `json:"new_id"`
	UnitType    types.UnitType `json:"unit_type,omitempty"`
	DryRun      bool           `json:"dry_run"`
	State       State          `json:"state"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at,omitempty"`
	Stages      []string       `json:"stages"`
	FailedStage string         `json:"failed_stage,omitempty"`
	Error       string         `json:"error,omitempty"`
	Items       []types.Item   `json:"items"`
	PreImages   []PreImage     `json:"pre_images,omitempty"`
}

// Degraded returns the items that were skipped or failed
func (r *Run) Degraded() []types.Item {
	var out []types.Item
	for _, item := range r.Items {
		if item.Degraded() {
			out = append(out, item)
		}
	}
	return out
}

// Journal stores migration runs
type Journal interface {
	SaveRun(run *Run) error
	GetRun(id string) (*Run, error)
	ListRuns() ([]*Run, error)
	Close() error
}
