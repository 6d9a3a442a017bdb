package vm

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
	"libvirt.org/go/libvirtxml"
)

// Info describes one domain for the info command.
type Info struct {
	Name       string
	UUID       string
	State      string
	VCPUs      uint
	MemoryKiB  uint64
	Autostart  bool
	Persistent bool
}

// Describe collects the info rows for the matching domains, sorted by name.
func Describe(lv LibvirtClient, patterns []*regexp.Regexp) ([]Info, []Failure, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, nil, err
	}

	infos := make([]Info, 0, len(domains))
	var failures []Failure
	for _, dom := range domains {
		info, err := describeDomain(lv, dom)
		if err != nil {
			failures = append(failures, Failure{Domain: dom.Name, Err: err})
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos, failures, nil
}

func describeDomain(lv LibvirtClient, dom libvirt.Domain) (Info, error) {
	state, err := lv.DomainState(dom)
	if err != nil {
		return Info{}, fmt.Errorf("failed to get state: %w", err)
	}
	label, err := StateLabel(state)
	if err != nil {
		label = fmt.Sprintf("unknown(%d)", state)
	}

	xmlDesc, err := lv.DomainXML(dom)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read domain description: %w", err)
	}
	var def libvirtxml.Domain
	if err := def.Unmarshal(xmlDesc); err != nil {
		return Info{}, fmt.Errorf("failed to parse domain description: %w", err)
	}

	autostart, err := lv.DomainAutostart(dom)
	if err != nil {
		return Info{}, fmt.Errorf("failed to get autostart: %w", err)
	}
	persistent, err := lv.DomainPersistent(dom)
	if err != nil {
		return Info{}, fmt.Errorf("failed to get persistence: %w", err)
	}

	info := Info{
		Name:       dom.Name,
		UUID:       uuid.UUID(dom.UUID).String(),
		State:      label,
		Autostart:  autostart,
		Persistent: persistent,
	}
	if def.VCPU != nil {
		info.VCPUs = def.VCPU.Value
	}
	if def.Memory != nil {
		info.MemoryKiB = memoryKiB(def.Memory.Value, def.Memory.Unit)
	}
	return info, nil
}

// memoryKiB normalizes a domain memory element to KiB. Dumped definitions
// report KiB; the other units appear only in hand-written ones.
func memoryKiB(value uint, unit string) uint64 {
	v := uint64(value)
	switch unit {
	case "b", "bytes":
		return v / 1024
	case "MiB", "M", "m":
		return v * 1024
	case "GiB", "G", "g":
		return v * 1024 * 1024
	case "TiB", "T", "t":
		return v * 1024 * 1024 * 1024
	}
	return v
}
