/*
Package metrics exposes Prometheus metrics for migrations.

vmmv is a one-shot command, so nothing is served over HTTP. After a run the
default registry can be written to a file for the node exporter textfile
collector:

	metrics_textfile: /var/lib/node_exporter/textfile/vmmv.prom

# Metrics

	vmmv_volumes_renamed_total{kind}            volumes renamed, by storage kind
	vmmv_items_skipped_total{stage,reason}      items skipped or failed
	vmmv_backups_relocated_total                backup archives moved
	vmmv_registry_lines_updated_total{registry} pool and job registry lines rewritten
	vmmv_migrations_total{result}               finished runs, done or failed
	vmmv_stage_duration_seconds{stage}          stage wall time
	vmmv_migration_duration_seconds             whole run wall time

Counters are driven by a Collector subscribed to the migration event broker.
Stage and run durations are observed directly by the orchestrator with a Timer:

	timer := metrics.NewTimer()
	runStage()
	timer.ObserveDurationVec(metrics.StageDuration, "backups")

Dry runs record planned items, which are not counted.
*/
package metrics
