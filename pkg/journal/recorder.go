package journal

import (
	"strconv"
	"sync"

	"github.com/cuemby/vmmv/pkg/events"
	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewRunID returns a time-ordered run id
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Recorder builds journal runs from migration events and saves them at
// every stage boundary
type Recorder struct {
	journal Journal
	logger  zerolog.Logger

	mu   sync.Mutex
	runs map[string]*Run
	err  error
}

// NewRecorder creates a recorder writing to j
func NewRecorder(j Journal) *Recorder {
	return &Recorder{
		journal: j,
		logger:  log.WithComponent("journal"),
		runs:    make(map[string]*Run),
	}
}

// Attach subscribes the recorder to a broker
func (r *Recorder) Attach(b *events.Broker) func() {
	return b.Subscribe(r.Handle)
}

// Err returns the first save error, if any
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Handle applies one event
func (r *Recorder) Handle(e *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.RunID == "" {
		return
	}

	run, ok := r.runs[e.RunID]
	if !ok {
		if e.Type != events.EventMigrationStarted {
			return
		}
		dryRun, _ := strconv.ParseBool(e.Metadata[events.MetaDryRun])
		run = &Run{
			ID:        e.RunID,
			OldID:     types.UnitID(e.Metadata[events.MetaOldID]),
			NewID:     types.UnitID(e.Metadata[events.MetaNewID]),
			DryRun:    dryRun,
			State:     StateRunning,
			StartedAt: e.Timestamp,
		}
		r.runs[e.RunID] = run
		r.save(run)
		return
	}

	switch e.Type {
	case events.EventStageStarted:
		run.Stages = append(run.Stages, e.Stage)
	case events.EventStageCompleted:
		if t := e.Metadata[events.MetaUnitType]; t != "" {
			run.UnitType = types.UnitType(t)
		}
		r.save(run)
	case events.EventStageFailed:
		run.FailedStage = e.Stage
		run.Error = e.Message
		r.save(run)
	case events.EventItemRecorded:
		if e.Item != nil {
			run.Items = append(run.Items, *e.Item)
		}
	case events.EventPreImage:
		run.PreImages = append(run.PreImages, PreImage{Path: e.Metadata[events.MetaPath], Content: e.Message})
	case events.EventMigrationFinished:
		run.State = State(e.Metadata[events.MetaResult])
		if run.State == "" {
			run.State = StateDone
		}
		if run.Error == "" {
			run.Error = e.Message
		}
		run.FinishedAt = e.Timestamp
		r.save(run)
		delete(r.runs, e.RunID)
	}
}

func (r *Recorder) save(run *Run) {
	if err := r.journal.SaveRun(run); err != nil {
		r.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to save journal entry")
		if r.err == nil {
			r.err = err
		}
	}
}
