package types

import (
	"sort"
	"strings"
)

// UnitID identifies a virtual machine or container on the node
type UnitID string

// String returns the id as it appears in file names and registries
func (id UnitID) String() string {
	return string(id)
}

// Valid reports whether the id can be embedded into volume, archive and
// registry names. An id must contain at least one digit and only letters,
// digits or underscores.
func (id UnitID) Valid() bool {
	if id == "" {
		return false
	}
	digit := false
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9':
			digit = true
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		default:
			return false
		}
	}
	return digit
}

// UnitType distinguishes virtual machines from containers
type UnitType string

const (
	UnitTypeVM        UnitType = "qemu"
	UnitTypeContainer UnitType = "lxc"
)

// StorageKind is the backend type declared in the storage catalog
type StorageKind string

const (
	StorageKindLVM     StorageKind = "lvm"
	StorageKindLVMThin StorageKind = "lvmthin"
	StorageKindZFSPool StorageKind = "zfspool"
	StorageKindDir     StorageKind = "dir"
	StorageKindNFS     StorageKind = "nfs"
	StorageKindCIFS    StorageKind = "cifs"
)

// StorageFamily groups kinds that share one rename primitive
type StorageFamily string

const (
	FamilyVolumeGroup      StorageFamily = "volume-group"
	FamilyPooledFilesystem StorageFamily = "pooled-filesystem"
	FamilyPath             StorageFamily = "path"
	FamilyUnsupported      StorageFamily = "unsupported"
)

// Family returns the rename family for the kind
func (k StorageKind) Family() StorageFamily {
	switch k {
	case StorageKindLVM, StorageKindLVMThin:
		return FamilyVolumeGroup
	case StorageKindZFSPool:
		return FamilyPooledFilesystem
	case StorageKindDir, StorageKindNFS, StorageKindCIFS:
		return FamilyPath
	default:
		return FamilyUnsupported
	}
}

// StorageBackend is one record of the node storage catalog.
// Records are built once per migration and must not be modified afterwards.
type StorageBackend struct {
	Name       string
	Kind       StorageKind
	Attributes map[string]string
	Flags      map[string]bool
}

// Attribute returns a key/value attribute of the backend
func (b *StorageBackend) Attribute(key string) (string, bool) {
	v, ok := b.Attributes[key]
	return v, ok
}

// Path returns the filesystem path of path-based backends
func (b *StorageBackend) Path() string {
	return b.Attributes["path"]
}

// Content returns the declared content classes, sorted
func (b *StorageBackend) Content() []string {
	raw := b.Attributes["content"]
	if raw == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// HasContent reports whether the backend stores objects of the given class
func (b *StorageBackend) HasContent(class string) bool {
	for _, c := range b.Content() {
		if c == class {
			return true
		}
	}
	return false
}

// Disabled reports whether the backend is switched off in the catalog.
// Both the bare flag form and "disable 1" are honoured.
func (b *StorageBackend) Disabled() bool {
	for _, key := range []string{"disable", "disabled"} {
		if b.Flags[key] {
			return true
		}
		if v, ok := b.Attributes[key]; ok && v != "0" && v != "false" {
			return true
		}
	}
	return false
}

// VolumeRef is a backend:volume pair found inside a unit definition.
// Volume is kept exactly as written, e.g. "vm-100-disk-0" or
// "100/vm-100-disk-0.qcow2".
type VolumeRef struct {
	Backend string
	Volume  string
}

// String returns the reference in definition syntax
func (r VolumeRef) String() string {
	return r.Backend + ":" + r.Volume
}

// Outcome is the result of handling one migration item
type Outcome string

const (
	OutcomeRenamed Outcome = "renamed"
	OutcomePlanned Outcome = "planned"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"

	// OutcomeUnverified means the rename command succeeded but the result
	// could not be confirmed by listing the storage again
	OutcomeUnverified Outcome = "unverified"
)

// ItemKind names the class of object an Item refers to
type ItemKind string

const (
	ItemVolume     ItemKind = "volume"
	ItemBackup     ItemKind = "backup"
	ItemDefinition ItemKind = "definition"
	ItemRegistry   ItemKind = "registry"
	ItemFirewall   ItemKind = "firewall"
)

// Item records what happened to a single object during a migration
type Item struct {
	Stage   string   `json:"stage"`
	Kind    ItemKind `json:"kind"`
	Backend string   `json:"backend,omitempty"`
	Old     string   `json:"old"`
	New     string   `json:"new,omitempty"`
	Outcome Outcome  `json:"outcome"`
	Reason  string   `json:"reason,omitempty"`
}

// Degraded reports whether the item needs operator attention
func (i Item) Degraded() bool {
	switch i.Outcome {
	case OutcomeSkipped, OutcomeFailed, OutcomeUnverified:
		return true
	}
	return false
}
