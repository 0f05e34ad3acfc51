package volume

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/rs/zerolog"
)

// Renamer renames one storage object so that it belongs to a new unit
type Renamer interface {
	// Rename renames oldName on backend and returns the new name.
	// It fails with types.ErrNotFound when oldName is not present. With
	// types.ErrUnverified the rename was applied and the name is valid.
	Rename(ctx context.Context, backend *types.StorageBackend, oldName string, newID types.UnitID) (string, error)
}

// Options control how renamers apply changes
type Options struct {
	// DryRun computes and checks names without invoking rename primitives
	DryRun bool

	// Verify re-reads the live listing after a native rename and requires
	// the new name to be present and the old one gone
	Verify bool
}

// Manager dispatches renames to the renamer for the backend's kind.
// A Manager memoizes live listings and is meant to live for one migration.
type Manager struct {
	renamers map[types.StorageFamily]Renamer
	files    *PathRenamer
	logger   zerolog.Logger
}

// NewManager creates a manager with one renamer per storage family
func NewManager(runner Runner, cmds Commands, opts Options) *Manager {
	files := NewPathRenamer(opts)
	return &Manager{
		renamers: map[types.StorageFamily]Renamer{
			types.FamilyVolumeGroup:      NewLVMRenamer(runner, cmds, opts),
			types.FamilyPooledFilesystem: NewZFSRenamer(runner, cmds, opts),
			types.FamilyPath:             files,
		},
		files:  files,
		logger: log.WithComponent("volume"),
	}
}

// GetRenamer returns the renamer for a backend kind
func (m *Manager) GetRenamer(kind types.StorageKind) (Renamer, error) {
	r, ok := m.renamers[kind.Family()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedKind, kind)
	}
	return r, nil
}

// Files returns the path-based renamer used for archive relocation
func (m *Manager) Files() *PathRenamer {
	return m.files
}

// Rename renames a volume using the appropriate renamer
func (m *Manager) Rename(ctx context.Context, backend *types.StorageBackend, oldName string, newID types.UnitID) (string, error) {
	r, err := m.GetRenamer(backend.Kind)
	if err != nil {
		return "", err
	}

	newName, err := r.Rename(ctx, backend, oldName, newID)
	if errors.Is(err, types.ErrUnverified) {
		m.logger.Warn().Err(err).Str("backend", backend.Name).Str("old", oldName).Msg("renamed volume without verification")
		return newName, err
	}
	if err != nil {
		return "", err
	}

	m.logger.Info().
		Str("backend", backend.Name).
		Str("kind", string(backend.Kind)).
		Str("old", oldName).
		Str("new", newName).
		Msg("renamed volume")
	return newName, nil
}
