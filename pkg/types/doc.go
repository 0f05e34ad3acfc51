/*
Package types defines the data model shared by every vmmv package.

The model covers the objects a unit id migration touches:

  - UnitID and UnitType: the virtual machine or container being renamed
  - StorageKind, StorageFamily and StorageBackend: records of the node
    storage catalog, grouped by the rename primitive they need
  - VolumeRef: a backend:volume token found in a unit definition
  - DiskName, ImageName and ArchiveName: the naming patterns that embed a
    unit id and how to substitute a new one
  - Item and Outcome: what happened to each object during a run

# Naming Patterns

Volume identifiers follow {prefix}-{unit}-disk-{index} where prefix is one
of vm, subvol or base:

	vm-100-disk-0           block volume or dataset
	subvol-100-disk-1       container subvolume
	100/vm-100-disk-0.qcow2 image on a path-based backend

Backup archives follow vzdump-{type}-{unit}-{timestamp}.{ext...}:

	vzdump-qemu-100-2023_01_01-00_00_00.vma.zst
	vzdump-lxc-101-2023_01_01-00_00_00.tar.zst.notes

WithUnit on each name type replaces the unit segment and keeps every
other segment verbatim.

# Errors

Sentinel errors (ErrNotFound, ErrAlreadyExists, ErrToolFailure, ...) are
wrapped with fmt.Errorf and classified by callers with errors.Is.
*/
package types
