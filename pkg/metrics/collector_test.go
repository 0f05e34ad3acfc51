package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/vmmv/pkg/events"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	broker := events.NewBroker()
	NewCollector().Attach(broker)

	volumes := testutil.ToFloat64(VolumesRenamed.WithLabelValues("lvmthin"))
	skipped := testutil.ToFloat64(ItemsSkipped.WithLabelValues("volumes", "skipped"))
	backups := testutil.ToFloat64(BackupsRelocated)
	lines := testutil.ToFloat64(RegistryLinesUpdated.WithLabelValues("job"))
	done := testutil.ToFloat64(MigrationsTotal.WithLabelValues("done"))

	broker.Publish(&events.Event{
		Type:     events.EventItemRecorded,
		Stage:    "volumes",
		Item:     &types.Item{Kind: types.ItemVolume, Outcome: types.OutcomeRenamed},
		Metadata: map[string]string{events.MetaStorageKind: "lvmthin"},
	})
	broker.Publish(&events.Event{
		Type:  events.EventItemRecorded,
		Stage: "volumes",
		Item:  &types.Item{Kind: types.ItemVolume, Outcome: types.OutcomeSkipped},
	})
	broker.Publish(&events.Event{
		Type: events.EventItemRecorded,
		Item: &types.Item{Kind: types.ItemVolume, Outcome: types.OutcomePlanned},
	})
	broker.Publish(&events.Event{
		Type: events.EventItemRecorded,
		Item: &types.Item{Kind: types.ItemBackup, Outcome: types.OutcomeRenamed},
	})
	broker.Publish(&events.Event{
		Type:     events.EventItemRecorded,
		Item:     &types.Item{Kind: types.ItemRegistry, Backend: "job", Outcome: types.OutcomeRenamed},
		Metadata: map[string]string{events.MetaLines: "2"},
	})
	broker.Publish(&events.Event{Type: events.EventMigrationFinished, Metadata: map[string]string{events.MetaResult: "done"}})

	assert.Equal(t, volumes+1, testutil.ToFloat64(VolumesRenamed.WithLabelValues("lvmthin")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(ItemsSkipped.WithLabelValues("volumes", "skipped")))
	assert.Equal(t, backups+1, testutil.ToFloat64(BackupsRelocated))
	assert.Equal(t, lines+2, testutil.ToFloat64(RegistryLinesUpdated.WithLabelValues("job")))
	assert.Equal(t, done+1, testutil.ToFloat64(MigrationsTotal.WithLabelValues("done")))
}

func TestCollector_UnverifiedCountsAsRenamed(t *testing.T) {
	broker := events.NewBroker()
	NewCollector().Attach(broker)

	volumes := testutil.ToFloat64(VolumesRenamed.WithLabelValues("zfspool"))
	unverified := testutil.ToFloat64(ItemsSkipped.WithLabelValues("volumes", "unverified"))

	broker.Publish(&events.Event{
		Type:     events.EventItemRecorded,
		Stage:    "volumes",
		Item:     &types.Item{Kind: types.ItemVolume, Outcome: types.OutcomeUnverified},
		Metadata: map[string]string{events.MetaStorageKind: "zfspool"},
	})

	assert.Equal(t, volumes+1, testutil.ToFloat64(VolumesRenamed.WithLabelValues("zfspool")))
	assert.Equal(t, unverified+1, testutil.ToFloat64(ItemsSkipped.WithLabelValues("volumes", "unverified")))
}

func TestWriteTextfile_IncludesRunDuration(t *testing.T) {
	NewTimer().ObserveDuration(MigrationDuration)

	path := filepath.Join(t.TempDir(), "vmmv.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vmmv_migration_duration_seconds_count")
}

func TestWriteTextfile(t *testing.T) {
	MigrationsTotal.WithLabelValues("done").Inc()

	path := filepath.Join(t.TempDir(), "textfile", "vmmv.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `vmmv_migrations_total{result="done"}`)
}
