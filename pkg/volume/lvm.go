package volume

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/vmmv/pkg/types"
)

// LVMRenamer renames logical volumes on lvm and lvmthin backends
type LVMRenamer struct {
	runner Runner
	cmds   Commands
	opts   Options
	lvs    *listing
}

// NewLVMRenamer creates a renamer backed by lvs and lvrename
func NewLVMRenamer(runner Runner, cmds Commands, opts Options) *LVMRenamer {
	r := &LVMRenamer{runner: runner, cmds: cmds, opts: opts}
	r.lvs = &listing{load: r.list}
	return r
}

// Rename renames the logical volume within its volume group. When the
// backend declares a vgname only volumes of that group are considered.
func (r *LVMRenamer) Rename(ctx context.Context, backend *types.StorageBackend, oldName string, newID types.UnitID) (string, error) {
	vg, _ := backend.Attribute("vgname")
	scope := func(container string) bool { return vg == "" || container == vg }
	return renameListed(ctx, r.lvs, scope, oldName, newID, r.opts, r.rename)
}

func (r *LVMRenamer) rename(ctx context.Context, vg, oldName, newName string) error {
	if _, err := r.runner.Run(ctx, r.cmds.LVRename, vg+"/"+oldName, vg+"/"+newName); err != nil {
		return fmt.Errorf("failed to rename logical volume %s/%s: %w", vg, oldName, err)
	}
	return nil
}

func (r *LVMRenamer) list(ctx context.Context) ([]entry, error) {
	out, err := r.runner.Run(ctx, r.cmds.LVS, "--noheadings", "-o", "lv_name,vg_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list logical volumes: %w", err)
	}
	return parseLVS(out), nil
}

// parseLVS reads "lv_name vg_name" columns, one volume per line
func parseLVS(out []byte) []entry {
	var entries []entry
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, entry{container: fields[1], name: fields[0]})
	}
	return entries
}
