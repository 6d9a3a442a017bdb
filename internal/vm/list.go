package vm

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/digitalocean/go-libvirt"

	"github.com/virtadm/vms/internal/match"
)

// Enumerate returns the domains whose name is selected by the patterns, in
// hypervisor-reported order. Callers that need determinism sort the rows
// they build from it.
func Enumerate(lv LibvirtClient, patterns []*regexp.Regexp) ([]libvirt.Domain, error) {
	domains, err := lv.ListAllDomains()
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	var selected []libvirt.Domain
	for _, dom := range domains {
		if match.Matches(dom.Name, patterns) {
			selected = append(selected, dom)
		}
	}
	return selected, nil
}

// ListEntry is one row of the list command.
type ListEntry struct {
	Name      string
	State     string
	GuestTime *time.Time
}

// List builds the rows of the list command, sorted by domain name. Guest
// time is queried only on running domains; a guest without a responding
// agent simply has no time, which is not an error.
func List(lv LibvirtClient, patterns []*regexp.Regexp) ([]ListEntry, []Failure, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]ListEntry, 0, len(domains))
	var failures []Failure
	for _, dom := range domains {
		state, err := lv.DomainState(dom)
		if err != nil {
			failures = append(failures, Failure{Domain: dom.Name, Err: fmt.Errorf("failed to get state: %w", err)})
			continue
		}

		label, err := StateLabel(state)
		if err != nil {
			// keep the row; the code is still worth showing
			failures = append(failures, Failure{Domain: dom.Name, Err: err})
			label = fmt.Sprintf("unknown(%d)", state)
		}

		entry := ListEntry{Name: dom.Name, State: label}
		if state == StateRunning {
			if t, err := lv.GuestTime(dom); err == nil {
				entry.GuestTime = &t
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, failures, nil
}
