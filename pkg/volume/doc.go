/*
Package volume renames storage objects so that they belong to a new unit id.

Each storage family has one renamer implementing the Renamer interface:

	┌──────────────────── VOLUME MANAGER ─────────────────────┐
	│                                                          │
	│  Rename(backend, oldName, newID)                         │
	│        │                                                 │
	│        ├── lvm, lvmthin ──► LVMRenamer                   │
	│        │     lvs --noheadings -o lv_name,vg_name         │
	│        │     lvrename vg/old vg/new                      │
	│        │                                                 │
	│        ├── zfspool ───────► ZFSRenamer                   │
	│        │     zfs list -H -o name -t volume,filesystem    │
	│        │     zfs rename pool/old pool/new                │
	│        │                                                 │
	│        └── dir, nfs, cifs ► PathRenamer                  │
	│              {path}/dump/{old}   -> {path}/dump/{new}    │
	│              {path}/images/{id}/ -> {path}/images/{new}/ │
	└──────────────────────────────────────────────────────────┘

# Live Listings

The volume-group and pool renamers resolve the container of a volume from a
live enumeration that runs at most once per Manager. A successful rename
updates the memoized listing in place, so a Manager must not outlive one
migration. A volume missing from the listing fails with types.ErrNotFound.

# Tool Failures

Every external command runs through a Runner. ExecRunner returns
types.ErrToolFailure when a command exits non-zero. With Options.Verify the
listing is read again after each native rename and a rename that reported
success but left the namespace unchanged is also reported as
types.ErrToolFailure. When the second listing itself fails the new name is
still returned, wrapped with types.ErrUnverified.

# Testing

volumetest.FakeRunner emulates lvs, lvrename and zfs against an in-memory namespace
and can be told to fail or silently ignore renames, fail listings after a
given count, or call a hook after every command.
*/
package volume
