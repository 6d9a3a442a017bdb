// Package output renders command results as tables or JSON.
package output

import (
	"fmt"

	"github.com/virtadm/vms/internal/vm"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter renders command results for output.
type Formatter interface {
	// FormatVMList renders the rows of the list command.
	FormatVMList(entries []vm.ListEntry) (string, error)

	// FormatVMInfo renders the rows of the info command.
	FormatVMInfo(infos []vm.Info) (string, error)

	// FormatAddresses renders the merged address reports.
	FormatAddresses(reports []vm.DomainAddresses) (string, error)

	// FormatSnapshots renders the rows of the snapshot list command.
	FormatSnapshots(entries []vm.SnapshotEntry) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, json)", format)
	}
}
