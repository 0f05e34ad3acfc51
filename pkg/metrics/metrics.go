package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Rename metrics
	VolumesRenamed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmmv_volumes_renamed_total",
			Help: "Total number of volumes renamed by storage kind",
		},
		[]string{"kind"},
	)

	ItemsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmmv_items_skipped_total",
			Help: "Total number of items skipped or failed by stage and outcome",
		},
		[]string{"stage", "reason"},
	)

	BackupsRelocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vmmv_backups_relocated_total",
			Help: "Total number of backup archives relocated",
		},
	)

	RegistryLinesUpdated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmmv_registry_lines_updated_total",
			Help: "Total number of registry lines rewritten by registry",
		},
		[]string{"registry"},
	)

	// Run metrics
	MigrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmmv_migrations_total",
			Help: "Total number of migrations by result",
		},
		[]string{"result"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vmmv_stage_duration_seconds",
			Help:    "Migration stage duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	MigrationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vmmv_migration_duration_seconds",
			Help:    "Whole migration duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(VolumesRenamed)
	prometheus.MustRegister(ItemsSkipped)
	prometheus.MustRegister(BackupsRelocated)
	prometheus.MustRegister(RegistryLinesUpdated)
	prometheus.MustRegister(MigrationsTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(MigrationDuration)
}

// WriteTextfile writes the default registry in text exposition format for
// the node exporter textfile collector
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
