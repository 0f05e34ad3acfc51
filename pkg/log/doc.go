/*
Package log provides structured logging for vmmv using zerolog.

The package wraps a single global zerolog.Logger with helpers for creating
component-scoped child loggers. Console output is the default because vmmv
is an operator tool; JSON output is available for log shipping.

# Usage

Initializing the Logger:

	import "github.com/cuemby/vmmv/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,
		Output:     os.Stderr,
	})

Component Loggers:

	volLog := log.WithComponent("volume")
	volLog.Info().
		Str("backend", "local-lvm").
		Str("old", "vm-100-disk-0").
		Str("new", "vm-200-disk-0").
		Msg("renamed volume")

Context Logger Helpers:

	unitLog := log.WithUnit("100")
	unitLog.Warn().Str("reason", "backend not in catalog").Msg("skipped volume")

# Log Levels

  - Debug: external command lines and listing sizes
  - Info: stage transitions and completed renames
  - Warn: skipped or failed items that need operator attention
  - Error: a fatal stage failure that stopped the migration

# Output Examples

Console Format:

	2024-10-13T10:30:00Z INF stage started component=migrate stage=validate
	2024-10-13T10:30:01Z WRN skipped volume backend=ceph reason="backend not in catalog"

JSON Format:

	{"level":"info","component":"migrate","stage":"validate","time":"2024-10-13T10:30:00Z","message":"stage started"}
*/
package log
