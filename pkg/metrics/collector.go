package metrics

import (
	"strconv"

	"github.com/cuemby/vmmv/pkg/events"
	"github.com/cuemby/vmmv/pkg/types"
)

// Collector turns migration events into counter updates
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// Attach subscribes the collector to a broker
func (c *Collector) Attach(b *events.Broker) func() {
	return b.Subscribe(c.Handle)
}

// Handle applies one event. Planned items from dry runs are not counted.
func (c *Collector) Handle(e *events.Event) {
	switch e.Type {
	case events.EventItemRecorded:
		if e.Item != nil {
			c.collectItem(e, e.Item)
		}
	case events.EventMigrationFinished:
		result := e.Metadata[events.MetaResult]
		if result == "" {
			result = "done"
		}
		MigrationsTotal.WithLabelValues(result).Inc()
	}
}

func (c *Collector) collectItem(e *events.Event, item *types.Item) {
	switch item.Outcome {
	case types.OutcomeSkipped, types.OutcomeFailed:
		ItemsSkipped.WithLabelValues(e.Stage, string(item.Outcome)).Inc()
		return
	case types.OutcomeUnverified:
		ItemsSkipped.WithLabelValues(e.Stage, string(item.Outcome)).Inc()
	case types.OutcomeRenamed:
	default:
		return
	}

	switch item.Kind {
	case types.ItemVolume:
		kind := e.Metadata[events.MetaStorageKind]
		if kind == "" {
			kind = "unknown"
		}
		VolumesRenamed.WithLabelValues(kind).Inc()
	case types.ItemBackup:
		BackupsRelocated.Inc()
	case types.ItemRegistry:
		lines, err := strconv.Atoi(e.Metadata[events.MetaLines])
		if err != nil || lines <= 0 {
			lines = 1
		}
		RegistryLinesUpdated.WithLabelValues(item.Backend).Add(float64(lines))
	}
}
