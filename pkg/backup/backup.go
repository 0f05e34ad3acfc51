// Package backup relocates backup archives to a new unit id.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cuemby/vmmv/pkg/catalog"
	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/cuemby/vmmv/pkg/volume"
)

// Migrator moves every archive of a unit on every backup-capable backend
type Migrator struct {
	catalog *catalog.Catalog
	files   volume.Renamer
	dryRun  bool
}

// NewMigrator creates a backup migrator. files must handle archive names,
// normally the path renamer from volume.Manager.Files.
func NewMigrator(cat *catalog.Catalog, files volume.Renamer, dryRun bool) *Migrator {
	return &Migrator{
		catalog: cat,
		files:   files,
		dryRun:  dryRun,
	}
}

// Archives lists the archive names in dir that belong to id, sorted
func Archives(dir string, id types.UnitID) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		a, ok := types.ParseArchiveName(e.Name())
		if !ok || a.Unit != id || !a.Timestamped() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Migrate renames the archives of oldID on every backend. Failures are
// returned as items and never stop the remaining files; only a canceled
// context is returned as an error.
func (m *Migrator) Migrate(ctx context.Context, oldID, newID types.UnitID) ([]types.Item, error) {
	var items []types.Item

	for _, backend := range m.catalog.BackendsWithBackupContent() {
		logger := log.WithBackend(backend.Name).With().Str("component", "backup").Logger()
		dir := filepath.Join(backend.Path(), volume.DumpDir)

		names, err := Archives(dir, oldID)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug().Str("dir", dir).Msg("no dump directory")
				continue
			}
			logger.Warn().Err(err).Msg("failed to list backups")
			items = append(items, types.Item{
				Kind:    types.ItemBackup,
				Backend: backend.Name,
				Old:     dir,
				Outcome: types.OutcomeFailed,
				Reason:  fmt.Sprintf("failed to list backups: %v", err),
			})
			continue
		}

		for _, name := range names {
			item := types.Item{Kind: types.ItemBackup, Backend: backend.Name, Old: name}

			newName, err := m.files.Rename(ctx, backend, name, newID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return items, ctxErr
				}
				item.Outcome = types.OutcomeFailed
				if errors.Is(err, types.ErrNotFound) {
					item.Outcome = types.OutcomeSkipped
				}
				item.Reason = err.Error()
				logger.Warn().Err(err).Str("archive", name).Msgf("%s backup", item.Outcome)
				items = append(items, item)
				continue
			}

			item.New = newName
			item.Outcome = types.OutcomeRenamed
			if m.dryRun {
				item.Outcome = types.OutcomePlanned
			}
			logger.Info().Str("old", name).Str("new", newName).Bool("dry_run", m.dryRun).Msg("relocated backup")
			items = append(items, item)
		}
	}
	return items, nil
}
