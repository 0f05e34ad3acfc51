package unit

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cuemby/vmmv/pkg/catalog"
	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/subst"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/cuemby/vmmv/pkg/volume"
	"github.com/rs/zerolog"
)

// Result describes a rewritten unit definition
type Result struct {
	UnitType  types.UnitType
	OldPath   string
	NewPath   string
	Original  string
	Rewritten string
	Items     []types.Item
}

// Migrator renames the volumes referenced by a unit definition and moves
// the definition to the new id
type Migrator struct {
	locator Locator
	catalog *catalog.Catalog
	renamer volume.Renamer
	dryRun  bool
	logger  zerolog.Logger
}

// NewMigrator creates a definition migrator
func NewMigrator(locator Locator, cat *catalog.Catalog, renamer volume.Renamer, dryRun bool) *Migrator {
	return &Migrator{
		locator: locator,
		catalog: cat,
		renamer: renamer,
		dryRun:  dryRun,
		logger:  log.WithComponent("unit"),
	}
}

// Migrate renames every volume owned by oldID and writes the rewritten
// definition under newID. Unresolvable references are reported as items and
// left verbatim. An error means the definition could not be read or written,
// or the context ended; volumes renamed before that point stay renamed and
// are listed in the returned Result when it is not nil.
func (m *Migrator) Migrate(ctx context.Context, oldID, newID types.UnitID) (*Result, error) {
	typ, ok := m.locator.Find(oldID)
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", oldID, types.ErrNotFound)
	}

	res := &Result{
		UnitType: typ,
		OldPath:  m.locator.Path(oldID, typ),
		NewPath:  m.locator.Path(newID, typ),
	}

	info, err := os.Stat(res.OldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat definition: %w", err)
	}
	data, err := os.ReadFile(res.OldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	res.Original = string(data)

	text := res.Original
	for _, ref := range FindReferences(text, oldID) {
		item := types.Item{Kind: types.ItemVolume, Backend: ref.Backend, Old: ref.Volume}

		backend, ok := m.catalog.Get(ref.Backend)
		if !ok {
			item.Outcome = types.OutcomeSkipped
			item.Reason = "backend not in storage catalog"
			m.logger.Warn().Str("backend", ref.Backend).Str("volume", ref.Volume).Msg("skipped volume: backend not in storage catalog")
			res.Items = append(res.Items, item)
			continue
		}

		newName, err := m.renamer.Rename(ctx, backend, ref.Volume, newID)
		if errors.Is(err, types.ErrUnverified) && newName != "" {
			text, _ = subst.Replace(text, ref.Volume, newName, subst.Volume)
			item.New = newName
			item.Outcome = types.OutcomeUnverified
			item.Reason = err.Error()
			res.Items = append(res.Items, item)
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// Volumes renamed so far stay renamed; report them
				res.Rewritten = text
				return res, ctxErr
			}
			item.Outcome, item.Reason = Classify(err)
			m.logger.Warn().Err(err).Str("backend", ref.Backend).Str("volume", ref.Volume).Msgf("%s volume", item.Outcome)
			res.Items = append(res.Items, item)
			continue
		}

		text, _ = subst.Replace(text, ref.Volume, newName, subst.Volume)
		item.New = newName
		item.Outcome = m.done()
		res.Items = append(res.Items, item)
	}
	res.Rewritten = text
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if !m.dryRun {
		if err := writeExclusive(res.NewPath, []byte(text), info.Mode().Perm()); err != nil {
			return res, err
		}
		if err := os.Remove(res.OldPath); err != nil {
			return res, fmt.Errorf("failed to remove old definition: %w", err)
		}
	}

	res.Items = append(res.Items, types.Item{
		Kind:    types.ItemDefinition,
		Old:     res.OldPath,
		New:     res.NewPath,
		Outcome: m.done(),
	})
	m.logger.Info().Str("old", res.OldPath).Str("new", res.NewPath).Bool("dry_run", m.dryRun).Msg("moved definition")
	return res, nil
}

func (m *Migrator) done() types.Outcome {
	if m.dryRun {
		return types.OutcomePlanned
	}
	return types.OutcomeRenamed
}

// Classify maps a per-item rename error to an outcome: objects that are
// simply absent are skipped, everything else failed.
func Classify(err error) (types.Outcome, string) {
	if errors.Is(err, types.ErrNotFound) {
		return types.OutcomeSkipped, err.Error()
	}
	return types.OutcomeFailed, err.Error()
}

// writeExclusive creates path and fails if it already exists
func writeExclusive(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("definition %s: %w", path, types.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create definition: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write definition: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write definition: %w", err)
	}
	return nil
}
