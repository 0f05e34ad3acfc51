package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cuemby/vmmv/pkg/backup"
	"github.com/cuemby/vmmv/pkg/catalog"
	"github.com/cuemby/vmmv/pkg/events"
	"github.com/cuemby/vmmv/pkg/journal"
	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/metrics"
	"github.com/cuemby/vmmv/pkg/registry"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/cuemby/vmmv/pkg/unit"
	"github.com/cuemby/vmmv/pkg/volume"
	"github.com/rs/zerolog"
)

// Stage is a step of the migration state machine
type Stage string

const (
	StageValidate     Stage = "validate"
	StageVolumes      Stage = "volumes"
	StageBackups      Stage = "backups"
	StagePoolRegistry Stage = "pool_registry"
	StageJobRegistry  Stage = "job_registry"
	StageFirewall     Stage = "firewall"
	StageDone         Stage = "done"
)

// Stages lists the stages in execution order
var Stages = []Stage{
	StageValidate,
	StageVolumes,
	StageBackups,
	StagePoolRegistry,
	StageJobRegistry,
	StageFirewall,
	StageDone,
}

// Paths locates the node files a migration reads and rewrites
type Paths struct {
	NodeRoot       string
	StorageCatalog string
	QemuDir        string
	LXCDir         string
	PoolRegistry   string
	JobRegistry    string
	FirewallDir    string
}

// Options configure an Orchestrator
type Options struct {
	Paths    Paths
	Runner   volume.Runner
	Commands volume.Commands

	// Verify re-lists volumes after each native rename
	Verify bool

	// DryRun plans every rename and rewrite without applying them
	DryRun bool

	// Broker receives progress events; nil disables publishing
	Broker *events.Broker
}

// Orchestrator runs migrations one stage after another
type Orchestrator struct {
	opts    Options
	locator unit.Locator
}

// New creates an orchestrator
func New(opts Options) *Orchestrator {
	if opts.Commands == (volume.Commands{}) {
		opts.Commands = volume.DefaultCommands()
	}
	return &Orchestrator{
		opts:    opts,
		locator: unit.Locator{QemuDir: opts.Paths.QemuDir, LXCDir: opts.Paths.LXCDir},
	}
}

// run holds the state of one migration
type run struct {
	*Orchestrator
	report  *Report
	catalog *catalog.Catalog
	volumes *volume.Manager
	logger  zerolog.Logger
}

// Migrate moves a unit from oldID to newID. A *ValidationError means nothing
// was changed. A *StageError means the run stopped at that stage and earlier
// stages stay applied. Per-item problems are returned in the report only.
func (o *Orchestrator) Migrate(ctx context.Context, oldID, newID types.UnitID) (*Report, error) {
	r := &run{
		Orchestrator: o,
		report: &Report{
			RunID:  journal.NewRunID(),
			OldID:  oldID,
			NewID:  newID,
			DryRun: o.opts.DryRun,
		},
		logger: log.WithUnit(string(oldID)).With().Str("component", "migrate").Str("new_id", string(newID)).Logger(),
	}

	r.publish(&events.Event{
		Type: events.EventMigrationStarted,
		Metadata: map[string]string{
			events.MetaOldID:  string(oldID),
			events.MetaNewID:  string(newID),
			events.MetaDryRun: strconv.FormatBool(o.opts.DryRun),
		},
	})
	r.logger.Info().Bool("dry_run", o.opts.DryRun).Msg("starting migration")

	timer := metrics.NewTimer()
	err := r.execute(ctx)
	timer.ObserveDuration(metrics.MigrationDuration)

	result := string(journal.StateDone)
	finished := &events.Event{Type: events.EventMigrationFinished}
	if err != nil {
		result = string(journal.StateFailed)
		finished.Message = err.Error()
		r.logger.Error().Err(err).Str("stage", string(r.report.Stage)).Msg("migration stopped")
	} else {
		r.logger.Info().
			Int("skipped", len(r.report.Skipped())).
			Int("failed", len(r.report.Failed())).
			Int("unverified", len(r.report.Unverified())).
			Msg("migration complete")
	}
	finished.Metadata = map[string]string{
		events.MetaResult: result,
	}
	r.publish(finished)

	return r.report, err
}

func (r *run) execute(ctx context.Context) error {
	steps := map[Stage]func(context.Context) error{
		StageValidate:     r.validate,
		StageVolumes:      r.renameVolumes,
		StageBackups:      r.relocateBackups,
		StagePoolRegistry: func(context.Context) error { return r.updateRegistry(r.opts.Paths.PoolRegistry, registry.PoolVariant) },
		StageJobRegistry:  func(context.Context) error { return r.updateRegistry(r.opts.Paths.JobRegistry, registry.JobVariant) },
		StageFirewall:     r.relocateFirewall,
	}

	for _, stage := range Stages {
		r.report.Stage = stage
		if stage == StageDone {
			break
		}

		if err := ctx.Err(); err != nil {
			return r.fail(stage, err)
		}

		r.publish(&events.Event{Type: events.EventStageStarted, Stage: string(stage)})
		r.logger.Debug().Str("stage", string(stage)).Msg("stage started")

		timer := metrics.NewTimer()
		err := steps[stage](ctx)
		timer.ObserveDurationVec(metrics.StageDuration, string(stage))

		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				r.publish(&events.Event{Type: events.EventStageFailed, Stage: string(stage), Message: err.Error()})
				return err
			}
			return r.fail(stage, err)
		}

		completed := &events.Event{Type: events.EventStageCompleted, Stage: string(stage)}
		if r.report.UnitType != "" {
			completed.Metadata = map[string]string{events.MetaUnitType: string(r.report.UnitType)}
		}
		r.publish(completed)
		r.logger.Info().Str("stage", string(stage)).Dur("duration", timer.Duration()).Msg("stage completed")
	}
	return nil
}

func (r *run) fail(stage Stage, err error) error {
	serr := &StageError{Stage: stage, Err: err}
	r.publish(&events.Event{Type: events.EventStageFailed, Stage: string(stage), Message: err.Error()})
	return serr
}

func (r *run) validate(ctx context.Context) error {
	invalid := func(err error) error {
		return &ValidationError{OldID: r.report.OldID, NewID: r.report.NewID, Err: err}
	}

	oldID, newID := r.report.OldID, r.report.NewID
	for _, id := range []types.UnitID{oldID, newID} {
		if !id.Valid() {
			return invalid(fmt.Errorf("%w: %q", types.ErrInvalidID, id))
		}
	}
	if oldID == newID {
		return invalid(fmt.Errorf("%w: old and new id are both %s", types.ErrInvalidID, oldID))
	}

	if info, err := os.Stat(r.opts.Paths.NodeRoot); err != nil || !info.IsDir() {
		return invalid(fmt.Errorf("%w: %s is missing, run directly on the node", types.ErrNotOnNode, r.opts.Paths.NodeRoot))
	}

	if r.locator.Exists(newID) {
		return invalid(fmt.Errorf("unit %s: %w", newID, types.ErrAlreadyExists))
	}
	typ, ok := r.locator.Find(oldID)
	if !ok {
		return invalid(fmt.Errorf("unit %s: %w", oldID, types.ErrNotFound))
	}
	r.report.UnitType = typ

	cat, err := catalog.Load(r.opts.Paths.StorageCatalog)
	if err != nil {
		return err
	}
	r.catalog = cat
	r.volumes = volume.NewManager(r.opts.Runner, r.opts.Commands, volume.Options{DryRun: r.opts.DryRun, Verify: r.opts.Verify})

	r.logger.Debug().Strs("backends", cat.Names()).Str("unit_type", string(typ)).Msg("validated migration")
	return nil
}

func (r *run) renameVolumes(ctx context.Context) error {
	m := unit.NewMigrator(r.locator, r.catalog, r.volumes, r.opts.DryRun)
	res, err := m.Migrate(ctx, r.report.OldID, r.report.NewID)
	if res != nil {
		r.preImage(res.OldPath, res.Original)
		r.report.Definition = res.Rewritten
		for _, item := range res.Items {
			meta := map[string]string{}
			if b, ok := r.catalog.Get(item.Backend); ok && item.Kind == types.ItemVolume {
				meta[events.MetaStorageKind] = string(b.Kind)
			}
			r.record(StageVolumes, item, meta)
		}
	}
	return err
}

func (r *run) relocateBackups(ctx context.Context) error {
	m := backup.NewMigrator(r.catalog, r.volumes.Files(), r.opts.DryRun)
	items, err := m.Migrate(ctx, r.report.OldID, r.report.NewID)
	for _, item := range items {
		r.record(StageBackups, item, nil)
	}
	return err
}

func (r *run) updateRegistry(path string, v registry.Variant) error {
	u := &registry.Updater{DryRun: r.opts.DryRun}
	res, err := u.Update(path, v, r.report.OldID, r.report.NewID)
	if err != nil {
		return err
	}
	if res.Missing {
		r.logger.Debug().Str("path", path).Msgf("no %s registry", v.Name)
		return nil
	}
	if !res.Changed() {
		return nil
	}

	r.preImage(path, string(res.Original))
	item := types.Item{Kind: types.ItemRegistry, Backend: v.Name, Old: path, New: path, Outcome: types.OutcomeRenamed}
	if r.opts.DryRun {
		item.Outcome = types.OutcomePlanned
	}
	r.record(r.report.Stage, item, map[string]string{events.MetaLines: strconv.Itoa(res.Lines)})
	r.logger.Info().Str("path", path).Int("lines", res.Lines).Msgf("updated %s registry", v.Name)
	return nil
}

func (r *run) relocateFirewall(context.Context) error {
	item := unit.RelocateFirewall(r.opts.Paths.FirewallDir, r.report.OldID, r.report.NewID, r.opts.DryRun)
	if item == nil {
		return nil
	}
	if item.Degraded() {
		r.logger.Warn().Str("path", item.Old).Str("reason", item.Reason).Msg("firewall rules not moved")
	}
	r.record(StageFirewall, *item, nil)
	return nil
}

func (r *run) record(stage Stage, item types.Item, meta map[string]string) {
	item.Stage = string(stage)
	r.report.Items = append(r.report.Items, item)
	r.publish(&events.Event{Type: events.EventItemRecorded, Stage: string(stage), Item: &item, Metadata: meta})
}

func (r *run) preImage(path, content string) {
	r.publish(&events.Event{
		Type:     events.EventPreImage,
		Message:  content,
		Metadata: map[string]string{events.MetaPath: path},
	})
}

func (r *run) publish(e *events.Event) {
	if r.opts.Broker == nil {
		return
	}
	e.RunID = r.report.RunID
	r.opts.Broker.Publish(e)
}
