package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtadm/vms/internal/match"
	"github.com/virtadm/vms/internal/vm"
)

var listCmd = &cobra.Command{
	Use:   "list [patterns...]",
	Short: "List domains matching the patterns",
	Long: `List every domain whose name matches one of the regular expression
patterns, together with its state and, for running guests with an agent,
the guest wall-clock time.

Example:
  vms list '^web' '^db'`,
	ValidArgsFunction: completeDomainPattern,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(args)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [patterns...]",
	Short: "Show domain details",
	Long: `Show the configuration of every matching domain: UUID, state, vCPU
count, memory, autostart, and whether the definition is persistent.`,
	ValidArgsFunction: completeDomainPattern,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := match.Compile(args)
		if err != nil {
			return err
		}
		formatter, err := newFormatter()
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		infos, failures, err := vm.Describe(client, patterns)
		if err != nil {
			return err
		}
		logFailures(failures)

		out, err := formatter.FormatVMInfo(infos)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	addFormatFlags(listCmd)
	addFormatFlags(infoCmd)
}

// runList implements the list command. The bare root command runs it too,
// with no patterns.
func runList(args []string) error {
	patterns, err := match.Compile(args)
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	client, err := connect()
	if err != nil {
		return err
	}
	defer closeClient(client)

	entries, failures, err := vm.List(client, patterns)
	if err != nil {
		return err
	}
	logFailures(failures)

	out, err := formatter.FormatVMList(entries)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// logFailures reports per-domain failures without touching the exit status.
func logFailures(failures []vm.Failure) {
	for _, f := range failures {
		log.Error().Err(f.Err).Str("domain", f.Domain).Msg("Failed to inspect domain")
	}
}
