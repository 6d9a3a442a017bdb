package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtadm/vms/internal/match"
	"github.com/virtadm/vms/internal/vm"
)

var addressesCmd = &cobra.Command{
	Use:   "addresses [patterns...]",
	Short: "Show network addresses of matching domains",
	Long: `Show the network interfaces and addresses of every matching running
domain, merged from the DHCP lease tables, the guest agent, and the host
ARP cache. Sources that cannot be queried contribute nothing.`,
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

		reports, failures, err := vm.Addresses(client, patterns)
		if err != nil {
			return err
		}
		logFailures(failures)

		out, err := formatter.FormatAddresses(reports)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	addFormatFlags(addressesCmd)
}
