// Package storage resolves a domain's disk attachments to the libvirt
// storage volumes that are safe to delete together with the domain.
//
// The delete workflow must never remove backing storage libvirt does not
// itself manage, and must never guess which file a disk refers to. The
// resolution rules are:
//
//  1. A disk without a target device name is skipped with a warning.
//  2. A disk without a <source> element declares no backing store and is
//     skipped silently (an empty removable drive, for example).
//  3. The source must carry exactly one identifying attribute out of
//     {file, dir, name, dev, volume}. Zero or several identifying
//     attributes make the descriptor ambiguous; the disk is skipped and
//     reported.
//  4. When the source names a pool, the volume is looked up by name inside
//     that pool. When it does not, the volume is looked up globally by
//     path; a path the hypervisor does not account for belongs to an
//     unmanaged volume that must be deleted manually.
//
// Every excluded disk is returned as a Skip tagged with the reason, so the
// caller can report each one against its domain. Resolution failures never
// abort the walk; each disk is judged on its own.
package storage
