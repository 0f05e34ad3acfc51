package unit

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cuemby/vmmv/pkg/types"
)

// DefaultFirewallDir holds per-unit firewall rule files
const DefaultFirewallDir = "/etc/pve/firewall"

// RelocateFirewall renames {dir}/{old}.fw to {dir}/{new}.fw. It returns nil
// when the unit has no firewall file.
func RelocateFirewall(dir string, oldID, newID types.UnitID, dryRun bool) *types.Item {
	src := filepath.Join(dir, string(oldID)+".fw")
	dst := filepath.Join(dir, string(newID)+".fw")
	item := &types.Item{Kind: types.ItemFirewall, Old: src, New: dst}

	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		item.Outcome, item.Reason = types.OutcomeFailed, err.Error()
		return item
	}
	if _, err := os.Stat(dst); err == nil {
		item.Outcome, item.Reason = types.OutcomeFailed, "firewall file for new id already exists"
		return item
	}

	if dryRun {
		item.Outcome = types.OutcomePlanned
		return item
	}
	if err := os.Rename(src, dst); err != nil {
		item.Outcome, item.Reason = types.OutcomeFailed, err.Error()
		return item
	}
	item.Outcome = types.OutcomeRenamed
	return item
}
