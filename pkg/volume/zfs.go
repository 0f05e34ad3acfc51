package volume

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/vmmv/pkg/types"
)

// ZFSRenamer renames datasets and zvols on zfspool backends
type ZFSRenamer struct {
	runner   Runner
	cmds     Commands
	opts     Options
	datasets *listing
}

// NewZFSRenamer creates a renamer backed by zfs list and zfs rename
func NewZFSRenamer(runner Runner, cmds Commands, opts Options) *ZFSRenamer {
	r := &ZFSRenamer{runner: runner, cmds: cmds, opts: opts}
	r.datasets = &listing{load: r.list}
	return r
}

// Rename renames the dataset within its pool. Without a declared pool
// attribute only single-level names (pool/volume) are considered.
func (r *ZFSRenamer) Rename(ctx context.Context, backend *types.StorageBackend, oldName string, newID types.UnitID) (string, error) {
	pool, _ := backend.Attribute("pool")
	scope := func(container string) bool {
		if pool == "" {
			return !strings.Contains(container, "/")
		}
		return container == pool
	}
	return renameListed(ctx, r.datasets, scope, oldName, newID, r.opts, r.rename)
}

func (r *ZFSRenamer) rename(ctx context.Context, pool, oldName, newName string) error {
	if _, err := r.runner.Run(ctx, r.cmds.ZFS, "rename", pool+"/"+oldName, pool+"/"+newName); err != nil {
		return fmt.Errorf("failed to rename dataset %s/%s: %w", pool, oldName, err)
	}
	return nil
}

func (r *ZFSRenamer) list(ctx context.Context) ([]entry, error) {
	out, err := r.runner.Run(ctx, r.cmds.ZFS, "list", "-H", "-o", "name", "-t", "volume,filesystem")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return parseZFSList(out), nil
}

// parseZFSList splits each dataset name into its parent and last component.
// Pool roots have no parent and are dropped.
func parseZFSList(out []byte) []entry {
	var entries []entry
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		i := strings.LastIndex(name, "/")
		if i <= 0 || i == len(name)-1 {
			continue
		}
		entries = append(entries, entry{container: name[:i], name: name[i+1:]})
	}
	return entries
}
