package vm

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/digitalocean/go-libvirt"

	vmslibvirt "github.com/virtadm/vms/internal/libvirt"
)

// Interface is one guest NIC, keyed by MAC, with the names and addresses
// seen for it across all address sources.
type Interface struct {
	MAC   string
	Names []string
	Addrs []string
}

// DomainAddresses is the merged address report of one running domain.
// Interfaces are ordered by MAC.
type DomainAddresses struct {
	Domain     string
	Interfaces []Interface
}

// Addresses reports the NIC addresses of every matching running domain,
// merging what the DHCP leases, the guest agent, and the ARP cache each
// know. A source that fails, typically the agent on a guest without one,
// contributes nothing.
func Addresses(lv LibvirtClient, patterns []*regexp.Regexp) ([]DomainAddresses, []Failure, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, nil, err
	}

	var all []DomainAddresses
	var failures []Failure
	for _, dom := range domains {
		state, err := lv.DomainState(dom)
		if err != nil {
			failures = append(failures, Failure{Domain: dom.Name, Err: fmt.Errorf("failed to get state: %w", err)})
			continue
		}
		if state != StateRunning {
			continue
		}
		all = append(all, domainAddresses(lv, dom))
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Domain < all[j].Domain })

	return all, failures, nil
}

var addrSources = []vmslibvirt.AddrSource{
	vmslibvirt.AddrSourceLease,
	vmslibvirt.AddrSourceAgent,
	vmslibvirt.AddrSourceArp,
}

func domainAddresses(lv LibvirtClient, dom libvirt.Domain) DomainAddresses {
	merged := map[string]*Interface{}
	for _, source := range addrSources {
		ifaces, err := lv.InterfaceAddresses(dom, source)
		if err != nil {
			continue
		}
		for _, iface := range ifaces {
			if iface.Name == "lo" || len(iface.Hwaddr) == 0 || iface.Hwaddr[0] == "" {
				continue
			}
			mac := iface.Hwaddr[0]
			entry := merged[mac]
			if entry == nil {
				entry = &Interface{MAC: mac}
				merged[mac] = entry
			}
			entry.Names = appendUnique(entry.Names, iface.Name)
			for _, addr := range iface.Addrs {
				entry.Addrs = appendUnique(entry.Addrs, addr.Addr)
			}
		}
	}

	report := DomainAddresses{Domain: dom.Name}
	macs := make([]string, 0, len(merged))
	for mac := range merged {
		macs = append(macs, mac)
	}
	sort.Strings(macs)
	for _, mac := range macs {
		entry := merged[mac]
		sortInterfaceNames(entry.Names)
		report.Interfaces = append(report.Interfaces, *entry)
	}
	return report
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

// sortInterfaceNames puts ethN names first and vnetN names second, so the
// guest-side name leads when both sides reported the same NIC. Discovery
// order is kept within each group.
func sortInterfaceNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return ifaceRank(names[i]) < ifaceRank(names[j])
	})
}

func ifaceRank(name string) int {
	switch strings.TrimRight(name, "0123456789") {
	case "eth":
		return 0
	case "vnet":
		return 1
	}
	return 2
}
