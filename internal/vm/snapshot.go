package vm

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/digitalocean/go-libvirt"
	"libvirt.org/go/libvirtxml"
)

// SnapshotEntry is one row of the snapshot list command.
type SnapshotEntry struct {
	Domain      string
	Name        string
	Current     bool
	State       string
	Created     *time.Time
	Description string
}

// ListSnapshots collects the snapshots of every matching domain, sorted by
// domain name and then snapshot name.
func ListSnapshots(lv LibvirtClient, patterns []*regexp.Regexp) ([]SnapshotEntry, []Failure, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, nil, err
	}

	var entries []SnapshotEntry
	var failures []Failure
	for _, dom := range domains {
		snaps, err := lv.ListSnapshots(dom)
		if err != nil {
			failures = append(failures, Failure{Domain: dom.Name, Err: fmt.Errorf("failed to list snapshots: %w", err)})
			continue
		}
		for _, snap := range snaps {
			entry, err := snapshotEntry(lv, dom, snap)
			if err != nil {
				failures = append(failures, Failure{Domain: dom.Name, Err: err})
				continue
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Domain != entries[j].Domain {
			return entries[i].Domain < entries[j].Domain
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, failures, nil
}

func snapshotEntry(lv LibvirtClient, dom libvirt.Domain, snap libvirt.DomainSnapshot) (SnapshotEntry, error) {
	xmlDesc, err := lv.SnapshotXML(snap)
	if err != nil {
		return SnapshotEntry{}, fmt.Errorf("failed to read snapshot %s: %w", snap.Name, err)
	}
	var def libvirtxml.DomainSnapshot
	if err := def.Unmarshal(xmlDesc); err != nil {
		return SnapshotEntry{}, fmt.Errorf("failed to parse snapshot %s: %w", snap.Name, err)
	}

	current, err := lv.SnapshotIsCurrent(snap)
	if err != nil {
		return SnapshotEntry{}, fmt.Errorf("failed to check snapshot %s: %w", snap.Name, err)
	}

	entry := SnapshotEntry{
		Domain:      dom.Name,
		Name:        snap.Name,
		Current:     current,
		State:       def.State,
		Description: def.Description,
	}
	if secs, err := strconv.ParseInt(def.CreationTime, 10, 64); err == nil {
		t := time.Unix(secs, 0)
		entry.Created = &t
	}
	return entry, nil
}

// snapshotRequest is the document sent to create a snapshot. A local type
// rather than the schema one: the description element must be present even
// when empty, and the name element absent when no name was given so the
// hypervisor generates one.
type snapshotRequest struct {
	XMLName     xml.Name `xml:"domainsnapshot"`
	Name        string   `xml:"name,omitempty"`
	Description string   `xml:"description"`
}

func snapshotXML(name, description string) (string, error) {
	out, err := xml.Marshal(snapshotRequest{Name: name, Description: description})
	if err != nil {
		return "", fmt.Errorf("failed to build snapshot description: %w", err)
	}
	return string(out), nil
}

// SnapshotResult reports one snapshot creation.
type SnapshotResult struct {
	Domain string
	Err    error
}

// CreateSnapshots creates a snapshot on every matching domain. An empty
// name lets the hypervisor pick one.
func CreateSnapshots(lv LibvirtClient, patterns []*regexp.Regexp, name, description string) ([]SnapshotResult, error) {
	xmlDesc, err := snapshotXML(name, description)
	if err != nil {
		return nil, err
	}

	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	results := make([]SnapshotResult, 0, len(domains))
	for _, dom := range domains {
		results = append(results, SnapshotResult{Domain: dom.Name, Err: lv.CreateSnapshot(dom, xmlDesc)})
	}
	return results, nil
}

// SnapshotDeletion reports the snapshot deletions on one domain. A failure
// abandons the domain's remaining matches, so Deleted holds what actually
// went away before Err.
type SnapshotDeletion struct {
	Domain  string
	Deleted []string
	Err     error
}

// DeleteSnapshots deletes every snapshot whose name matches namePattern on
// every matching domain.
func DeleteSnapshots(lv LibvirtClient, patterns []*regexp.Regexp, namePattern *regexp.Regexp) ([]SnapshotDeletion, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	results := make([]SnapshotDeletion, 0, len(domains))
	for _, dom := range domains {
		res := SnapshotDeletion{Domain: dom.Name}
		snaps, err := lv.ListSnapshots(dom)
		if err != nil {
			res.Err = fmt.Errorf("failed to list snapshots: %w", err)
			results = append(results, res)
			continue
		}
		for _, snap := range snaps {
			if !namePattern.MatchString(snap.Name) {
				continue
			}
			if err := lv.DeleteSnapshot(snap); err != nil {
				res.Err = fmt.Errorf("failed to delete snapshot %s: %w", snap.Name, err)
				break
			}
			res.Deleted = append(res.Deleted, snap.Name)
		}
		results = append(results, res)
	}
	return results, nil
}

// SnapshotRevert reports one revert attempt. Reverted false with a nil Err
// means the domain has no snapshot with the requested name.
type SnapshotRevert struct {
	Domain   string
	Reverted bool
	Err      error
}

// RevertSnapshots rolls every matching domain back to its snapshot named
// exactly name. Reverting is destructive, so the name is never treated as
// a pattern here.
func RevertSnapshots(lv LibvirtClient, patterns []*regexp.Regexp, name string) ([]SnapshotRevert, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	results := make([]SnapshotRevert, 0, len(domains))
	for _, dom := range domains {
		res := SnapshotRevert{Domain: dom.Name}
		snaps, err := lv.ListSnapshots(dom)
		if err != nil {
			res.Err = fmt.Errorf("failed to list snapshots: %w", err)
			results = append(results, res)
			continue
		}
		for _, snap := range snaps {
			if snap.Name != name {
				continue
			}
			if err := lv.RevertToSnapshot(snap); err != nil {
				res.Err = err
			} else {
				res.Reverted = true
			}
			break
		}
		results = append(results, res)
	}
	return results, nil
}
