package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/virtadm/vms/internal/vm"
)

// JSONFormatter formats results as JSON. Timestamps are RFC 3339, missing
// ones are null.
type JSONFormatter struct{}

func marshal(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(data) + "\n", nil
}

type listRow struct {
	Name  string     `json:"name"`
	State string     `json:"state"`
	Time  *time.Time `json:"time"`
}

// FormatVMList formats the list rows as a JSON array.
func (f *JSONFormatter) FormatVMList(entries []vm.ListEntry) (string, error) {
	rows := make([]listRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, listRow{Name: entry.Name, State: entry.State, Time: entry.GuestTime})
	}
	return marshal(rows)
}

type infoRow struct {
	Name       string `json:"name"`
	UUID       string `json:"uuid"`
	State      string `json:"state"`
	VCPUs      uint   `json:"vcpus"`
	MemoryKiB  uint64 `json:"memory_kib"`
	Autostart  bool   `json:"autostart"`
	Persistent bool   `json:"persistent"`
}

// FormatVMInfo formats the info rows as a JSON array.
func (f *JSONFormatter) FormatVMInfo(infos []vm.Info) (string, error) {
	rows := make([]infoRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, infoRow{
			Name:       info.Name,
			UUID:       info.UUID,
			State:      info.State,
			VCPUs:      info.VCPUs,
			MemoryKiB:  info.MemoryKiB,
			Autostart:  info.Autostart,
			Persistent: info.Persistent,
		})
	}
	return marshal(rows)
}

type addressEntry struct {
	Names []string `json:"names"`
	Addrs []string `json:"addrs"`
}

// FormatAddresses formats the merged address reports as a JSON object keyed
// by domain name, each holding an object keyed by MAC.
func (f *JSONFormatter) FormatAddresses(reports []vm.DomainAddresses) (string, error) {
	out := make(map[string]map[string]addressEntry, len(reports))
	for _, report := range reports {
		ifaces := make(map[string]addressEntry, len(report.Interfaces))
		for _, iface := range report.Interfaces {
			names := iface.Names
			if names == nil {
				names = []string{}
			}
			addrs := iface.Addrs
			if addrs == nil {
				addrs = []string{}
			}
			ifaces[iface.MAC] = addressEntry{Names: names, Addrs: addrs}
		}
		out[report.Domain] = ifaces
	}
	return marshal(out)
}

type snapshotRow struct {
	Domain      string     `json:"domain"`
	Name        string     `json:"name"`
	Current     bool       `json:"current"`
	State       string     `json:"state"`
	Created     *time.Time `json:"created"`
	Description string     `json:"description"`
}

// FormatSnapshots formats the snapshot rows as a JSON array.
func (f *JSONFormatter) FormatSnapshots(entries []vm.SnapshotEntry) (string, error) {
	rows := make([]snapshotRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, snapshotRow{
			Domain:      entry.Domain,
			Name:        entry.Name,
			Current:     entry.Current,
			State:       entry.State,
			Created:     entry.Created,
			Description: entry.Description,
		})
	}
	return marshal(rows)
}
