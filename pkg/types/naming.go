package types

import (
	"regexp"
	"strings"
)

var (
	diskNameRegexp    = regexp.MustCompile(`^(vm|subvol|base)-([A-Za-z0-9_]+)-disk-(\d+)(\.[A-Za-z0-9]+)?$`)
	archiveNameRegexp = regexp.MustCompile(`^vzdump-([a-z]+)-([A-Za-z0-9_]+)-(.+)$`)
	archiveRestRegexp = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}-\d{2}_\d{2}_\d{2}(?:\.\w+)+$`)
)

// DiskName is a volume identifier of the form {prefix}-{unit}-disk-{index}
// with an optional file extension for path-based images.
type DiskName struct {
	Prefix string
	Unit   UnitID
	Index  string
	Ext    string
}

// ParseDiskName parses a volume identifier
func ParseDiskName(s string) (DiskName, bool) {
	m := diskNameRegexp.FindStringSubmatch(s)
	if m == nil {
		return DiskName{}, false
	}
	return DiskName{Prefix: m[1], Unit: UnitID(m[2]), Index: m[3], Ext: m[4]}, true
}

func (d DiskName) String() string {
	return d.Prefix + "-" + string(d.Unit) + "-disk-" + d.Index + d.Ext
}

// WithUnit returns the name with the unit segment replaced; prefix, index
// and extension are kept verbatim.
func (d DiskName) WithUnit(id UnitID) DiskName {
	d.Unit = id
	return d
}

// ImageName is a path-based volume "{owner}/{disk}" stored under the
// backend's images directory.
type ImageName struct {
	Owner UnitID
	Disk  DiskName
}

// ParseImageName parses an owner-qualified image volume
func ParseImageName(s string) (ImageName, bool) {
	owner, rest, ok := strings.Cut(s, "/")
	if !ok || !UnitID(owner).Valid() {
		return ImageName{}, false
	}
	disk, ok := ParseDiskName(rest)
	if !ok {
		return ImageName{}, false
	}
	return ImageName{Owner: UnitID(owner), Disk: disk}, true
}

func (n ImageName) String() string {
	return string(n.Owner) + "/" + n.Disk.String()
}

// WithUnit moves both the owner directory and the disk name to id
func (n ImageName) WithUnit(id UnitID) ImageName {
	return ImageName{Owner: id, Disk: n.Disk.WithUnit(id)}
}

// ArchiveName is a backup file name vzdump-{type}-{unit}-{rest}
type ArchiveName struct {
	UnitType string
	Unit     UnitID
	Rest     string
}

// ParseArchiveName parses a backup archive file name
func ParseArchiveName(s string) (ArchiveName, bool) {
	m := archiveNameRegexp.FindStringSubmatch(s)
	if m == nil {
		return ArchiveName{}, false
	}
	return ArchiveName{UnitType: m[1], Unit: UnitID(m[2]), Rest: m[3]}, true
}

// Timestamped reports whether the remainder is a dump timestamp followed
// by one or more extensions, e.g. 2023_01_01-00_00_00.vma.zst
func (a ArchiveName) Timestamped() bool {
	return archiveRestRegexp.MatchString(a.Rest)
}

func (a ArchiveName) String() string {
	return "vzdump-" + a.UnitType + "-" + string(a.Unit) + "-" + a.Rest
}

// WithUnit returns the archive name with only the unit segment replaced
func (a ArchiveName) WithUnit(id UnitID) ArchiveName {
	a.Unit = id
	return a
}
