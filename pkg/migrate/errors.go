package migrate

import (
	"fmt"

	"github.com/cuemby/vmmv/pkg/types"
)

// ValidationError means the migration was refused before anything changed
type ValidationError struct {
	OldID types.UnitID
	NewID types.UnitID
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot migrate %s to %s: %v", e.OldID, e.NewID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StageError means a stage could not complete and the run stopped there.
// Stages before it are not undone.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
