package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/virtadm/vms/internal/vm"
)

// guestTimeLayout renders guest clocks in the list table.
const guestTimeLayout = "2006-01-02 15:04:05"

// TableFormatter formats results as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

func (f *TableFormatter) table(header string, write func(w *tabwriter.Writer)) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, header)
	}
	write(w)
	_ = w.Flush()
	return buf.String()
}

// FormatVMList formats the list rows as a table.
func (f *TableFormatter) FormatVMList(entries []vm.ListEntry) (string, error) {
	if len(entries) == 0 {
		return "No domains found\n", nil
	}

	out := f.table("NAME\tSTATE\tTIME", func(w *tabwriter.Writer) {
		for _, entry := range entries {
			guestTime := "-"
			if entry.GuestTime != nil {
				guestTime = entry.GuestTime.Format(guestTimeLayout)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Name, entry.State, guestTime)
		}
	})
	return out, nil
}

// FormatVMInfo formats the info rows as a table.
func (f *TableFormatter) FormatVMInfo(infos []vm.Info) (string, error) {
	if len(infos) == 0 {
		return "No domains found\n", nil
	}

	out := f.table("NAME\tUUID\tSTATE\tVCPUS\tMEMORY\tAUTOSTART\tPERSISTENT", func(w *tabwriter.Writer) {
		for _, info := range infos {
			memory := fmt.Sprintf("%d MiB", info.MemoryKiB/1024)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				info.Name, info.UUID, info.State, info.VCPUs, memory,
				strconv.FormatBool(info.Autostart), strconv.FormatBool(info.Persistent))
		}
	})
	return out, nil
}

// FormatAddresses formats the merged address reports as a table, one row per
// interface, with IPv4 and IPv6 addresses in separate columns.
func (f *TableFormatter) FormatAddresses(reports []vm.DomainAddresses) (string, error) {
	if len(reports) == 0 {
		return "No addresses found\n", nil
	}

	out := f.table("DOMAIN\tMAC\tINTERFACE\tIPV4\tIPV6", func(w *tabwriter.Writer) {
		for _, report := range reports {
			for _, iface := range report.Interfaces {
				v4, v6 := splitAddrs(iface.Addrs)
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					report.Domain, iface.MAC, joinOrDash(iface.Names),
					joinOrDash(v4), joinOrDash(v6))
			}
		}
	})
	return out, nil
}

// FormatSnapshots formats the snapshot rows as a table.
func (f *TableFormatter) FormatSnapshots(entries []vm.SnapshotEntry) (string, error) {
	if len(entries) == 0 {
		return "No snapshots found\n", nil
	}

	out := f.table("DOMAIN\tNAME\tCURRENT\tSTATE\tCREATED\tDESCRIPTION", func(w *tabwriter.Writer) {
		for _, entry := range entries {
			current := ""
			if entry.Current {
				current = "✔"
			}
			created := "-"
			if entry.Created != nil {
				created = entry.Created.Format(time.ANSIC)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				entry.Domain, entry.Name, current, entry.State, created, entry.Description)
		}
	})
	return out, nil
}

// splitAddrs separates the addresses of one interface by family. Dotted
// addresses are IPv4, the check runs first so mapped forms like
// ::ffff:10.0.0.1 count as IPv4 too.
func splitAddrs(addrs []string) (v4, v6 []string) {
	for _, addr := range addrs {
		switch {
		case strings.Contains(addr, "."):
			v4 = append(v4, addr)
		case strings.Contains(addr, ":"):
			v6 = append(v6, addr)
		}
	}
	return v4, v6
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
