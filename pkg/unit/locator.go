package unit

import (
	"os"
	"path/filepath"

	"github.com/cuemby/vmmv/pkg/types"
)

const (
	// DefaultQemuDir holds virtual machine definitions
	DefaultQemuDir = "/etc/pve/qemu-server"

	// DefaultLXCDir holds container definitions
	DefaultLXCDir = "/etc/pve/lxc"
)

// Locator finds unit definition files
type Locator struct {
	QemuDir string
	LXCDir  string
}

// Path returns the definition path of id for the given unit type
func (l Locator) Path(id types.UnitID, typ types.UnitType) string {
	dir := l.QemuDir
	if typ == types.UnitTypeContainer {
		dir = l.LXCDir
	}
	return filepath.Join(dir, string(id)+".conf")
}

// Find looks for the definition of id, virtual machines first
func (l Locator) Find(id types.UnitID) (types.UnitType, bool) {
	for _, typ := range []types.UnitType{types.UnitTypeVM, types.UnitTypeContainer} {
		if _, err := os.Stat(l.Path(id, typ)); err == nil {
			return typ, true
		}
	}
	return "", false
}

// Exists reports whether any definition exists for id
func (l Locator) Exists(id types.UnitID) bool {
	_, ok := l.Find(id)
	return ok
}
