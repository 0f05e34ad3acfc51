/*
Package unit moves a unit definition file from one id to another.

Definitions live in the cluster filesystem, one file per unit:

	/etc/pve/qemu-server/100.conf   virtual machine
	/etc/pve/lxc/100.conf           container

A definition references its volumes as backend:volume tokens, for example
"scsi0: local-lvm:vm-100-disk-0,size=32G". The Migrator finds every token
owned by the old id, asks a volume.Renamer to rename the object behind it,
and substitutes the new volume name everywhere in the file, including
snapshot and pending sections. Tokens that cannot be resolved are reported
and left untouched.

The rewritten text is created under the new id with O_EXCL, so an existing
definition is never overwritten, and the old file is removed only after the
new one is written.
*/
package unit
