package storage

import (
	"encoding/xml"
	"fmt"

	"github.com/digitalocean/go-libvirt"
)

// VolumeLookup is the storage operations surface the resolution engine
// needs. *libvirt.Client (internal/libvirt) satisfies it.
type VolumeLookup interface {
	// LookupPool finds a storage pool by name.
	LookupPool(name string) (libvirt.StoragePool, error)

	// LookupVolume finds a storage volume by name within a pool.
	LookupVolume(pool libvirt.StoragePool, name string) (libvirt.StorageVol, error)

	// LookupVolumeByPath finds a storage volume by host path.
	LookupVolumeByPath(path string) (libvirt.StorageVol, error)
}

// sourceAttributes are the <source> attributes that identify a disk's
// backing store. Exactly one of them must be present for the backing store
// to be resolvable; pool is auxiliary and does not count.
var sourceAttributes = map[string]bool{
	"file":   true,
	"dir":    true,
	"name":   true,
	"dev":    true,
	"volume": true,
}

// Disk is one disk attachment read from a domain's XML description.
// Source holds the raw attributes of the <source> element so that a
// descriptor carrying several identifying attributes can be recognized
// and rejected instead of silently collapsed to one.
type Disk struct {
	Target    string
	HasSource bool
	Source    map[string]string
}

// Resolution is a member of the deletion set: a volume the hypervisor
// manages and which may be deleted together with its domain.
type Resolution struct {
	Vol    libvirt.StorageVol
	Target string
	Source string
}

// SkipKind classifies why a disk was left out of the deletion set.
type SkipKind int

const (
	// SkipMissingTarget marks a disk definition without a target device.
	SkipMissingTarget SkipKind = iota
	// SkipAmbiguousSource marks a source descriptor without exactly one
	// identifying attribute.
	SkipAmbiguousSource
	// SkipPoolNotFound marks a descriptor naming an unknown storage pool.
	SkipPoolNotFound
	// SkipVolumeNotFound marks a volume name missing from its pool.
	SkipVolumeNotFound
	// SkipUnmanagedVolume marks a path no storage pool accounts for; the
	// backing file must be deleted manually.
	SkipUnmanagedVolume
)

func (k SkipKind) String() string {
	switch k {
	case SkipMissingTarget:
		return "missing target"
	case SkipAmbiguousSource:
		return "ambiguous source"
	case SkipPoolNotFound:
		return "pool not found"
	case SkipVolumeNotFound:
		return "volume not found"
	case SkipUnmanagedVolume:
		return "unmanaged volume"
	default:
		return fmt.Sprintf("skip(%d)", int(k))
	}
}

// Skip records one disk excluded from the deletion set and why.
type Skip struct {
	Kind   SkipKind
	Target string
	Source string
	Pool   string
	Cause  error
}

// domainDevices mirrors just enough of the domain XML schema to walk the
// disk attachments. The <source> element keeps its attributes raw: the
// typed schema would decode only the attribute matching the declared disk
// type and hide any stray second identifier from the ambiguity check.
type domainDevices struct {
	XMLName xml.Name    `xml:"domain"`
	Disks   []diskEntry `xml:"devices>disk"`
}

type diskEntry struct {
	Target *struct {
		Dev string `xml:"dev,attr"`
	} `xml:"target"`
	Source *struct {
		Attrs []xml.Attr `xml:",any,attr"`
	} `xml:"source"`
}

// ParseDisks extracts the disk attachments from a domain XML description.
func ParseDisks(xmlDesc string) ([]Disk, error) {
	var def domainDevices
	if err := xml.Unmarshal([]byte(xmlDesc), &def); err != nil {
		return nil, fmt.Errorf("failed to parse domain description: %w", err)
	}

	disks := make([]Disk, 0, len(def.Disks))
	for _, d := range def.Disks {
		disk := Disk{}
		if d.Target != nil {
			disk.Target = d.Target.Dev
		}
		if d.Source != nil {
			disk.HasSource = true
			disk.Source = make(map[string]string, len(d.Source.Attrs))
			for _, attr := range d.Source.Attrs {
				disk.Source[attr.Name.Local] = attr.Value
			}
		}
		disks = append(disks, disk)
	}
	return disks, nil
}

// identifyingAttr returns the single identifying attribute of a source
// descriptor, or ok=false when zero or several are present.
func identifyingAttr(source map[string]string) (name string, ok bool) {
	found := ""
	count := 0
	for attr := range source {
		if sourceAttributes[attr] {
			found = attr
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return found, true
}

// Resolve walks a domain's disks and builds the set of storage volumes
// eligible for deletion alongside the domain. Disks it cannot resolve are
// returned as Skips; Resolve never guesses. A disk without a source
// descriptor declares no backing store and is passed over silently.
func Resolve(lv VolumeLookup, disks []Disk) ([]Resolution, []Skip) {
	var resolved []Resolution
	var skipped []Skip

	for _, disk := range disks {
		if disk.Target == "" {
			skipped = append(skipped, Skip{Kind: SkipMissingTarget})
			continue
		}
		if !disk.HasSource {
			continue
		}

		attr, ok := identifyingAttr(disk.Source)
		if !ok {
			skipped = append(skipped, Skip{Kind: SkipAmbiguousSource, Target: disk.Target})
			continue
		}
		source := disk.Source[attr]

		pool, hasPool := disk.Source["pool"]
		var vol libvirt.StorageVol
		if hasPool {
			poolObj, err := lv.LookupPool(pool)
			if err != nil {
				skipped = append(skipped, Skip{
					Kind:   SkipPoolNotFound,
					Target: disk.Target,
					Source: source,
					Pool:   pool,
					Cause:  err,
				})
				continue
			}

			vol, err = lv.LookupVolume(poolObj, source)
			if err != nil {
				skipped = append(skipped, Skip{
					Kind:   SkipVolumeNotFound,
					Target: disk.Target,
					Source: source,
					Pool:   pool,
					Cause:  err,
				})
				continue
			}
		} else {
			var err error
			vol, err = lv.LookupVolumeByPath(source)
			if err != nil {
				skipped = append(skipped, Skip{
					Kind:   SkipUnmanagedVolume,
					Target: disk.Target,
					Source: source,
					Cause:  err,
				})
				continue
			}
		}

		resolved = append(resolved, Resolution{Vol: vol, Target: disk.Target, Source: source})
	}

	return resolved, skipped
}
