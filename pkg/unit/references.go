package unit

import (
	"regexp"

	"github.com/cuemby/vmmv/pkg/types"
)

// referenceRegexp matches backend:volume tokens. The volume is either a
// disk name, a disk name behind a linked-clone base ("base-9-disk-0/"), or
// an owner-qualified image ("100/vm-100-disk-0.qcow2").
var referenceRegexp = regexp.MustCompile(
	`([A-Za-z][A-Za-z0-9_.\-]*):(?:base-[A-Za-z0-9_]+-disk-\d+/)?((?:[A-Za-z0-9_]+/)?(?:vm|subvol|base)-[A-Za-z0-9_]+-disk-\d+(?:\.[A-Za-z0-9]+)?)`,
)

// FindReferences returns the distinct volume references owned by id, in
// order of first appearance
func FindReferences(text string, id types.UnitID) []types.VolumeRef {
	var refs []types.VolumeRef
	seen := make(map[types.VolumeRef]bool)

	for _, m := range referenceRegexp.FindAllStringSubmatch(text, -1) {
		ref := types.VolumeRef{Backend: m[1], Volume: m[2]}
		if seen[ref] || !ownedBy(ref.Volume, id) {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

func ownedBy(volume string, id types.UnitID) bool {
	if img, ok := types.ParseImageName(volume); ok {
		return img.Owner == id && img.Disk.Unit == id
	}
	disk, ok := types.ParseDiskName(volume)
	return ok && disk.Unit == id
}
