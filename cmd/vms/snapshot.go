package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtadm/vms/internal/match"
	"github.com/virtadm/vms/internal/vm"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage domain snapshots",
	Long: `List, create, delete, and revert to snapshots of matching domains.
Without a subcommand the snapshots are listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshotList(nil)
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list [patterns...]",
	Short: "List snapshots of matching domains",
	Long: `List every snapshot of every matching domain with its state, creation
time, and description. The current snapshot of each domain is marked.`,
	ValidArgsFunction: completeDomainPattern,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshotList(args)
	},
}

var snapshotDescription string

var snapshotCreateCmd = &cobra.Command{
	Use:   "create <name> [patterns...]",
	Short: "Create a snapshot on matching domains",
	Long: `Create a snapshot named <name> on every matching domain. An empty name
lets the hypervisor pick one.

Example:
  vms snapshot create nightly --description 'before upgrade' '^web'`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeSnapshotArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := match.Compile(args[1:])
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		results, err := vm.CreateSnapshots(client, patterns, args[0], snapshotDescription)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				log.Error().Err(res.Err).Str("domain", res.Domain).Msg("Failed to create snapshot")
				continue
			}
			fmt.Println("Created snapshot for " + res.Domain)
		}
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name> [patterns...]",
	Short: "Delete snapshots of matching domains",
	Long: `Delete every snapshot whose name matches the regular expression <name>
on every matching domain.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeSnapshotArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		namePattern, err := match.Compile(args[:1])
		if err != nil {
			return err
		}
		patterns, err := match.Compile(args[1:])
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		results, err := vm.DeleteSnapshots(client, patterns, namePattern[0])
		if err != nil {
			return err
		}
		for _, res := range results {
			for _, snap := range res.Deleted {
				fmt.Printf("Deleted snapshot %s on %s\n", snap, res.Domain)
			}
			if res.Err != nil {
				log.Error().Err(res.Err).Str("domain", res.Domain).Msg("Failed to delete snapshot")
				continue
			}
			if len(res.Deleted) == 0 {
				log.Warn().Str("domain", res.Domain).Msg("No snapshot to delete")
			}
		}
		return nil
	},
}

var snapshotRevertCmd = &cobra.Command{
	Use:   "revert <name> [patterns...]",
	Short: "Revert matching domains to a snapshot",
	Long: `Roll every matching domain back to its snapshot named exactly <name>,
then set the guest clocks back to the host time. Domains without a
snapshot of that name are left untouched.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeSnapshotArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := match.Compile(args[1:])
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		results, err := vm.RevertSnapshots(client, patterns, args[0])
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				log.Error().Err(res.Err).Str("domain", res.Domain).Str("snapshot", args[0]).Msg("Failed to revert to snapshot")
				continue
			}
			if !res.Reverted {
				log.Warn().Str("domain", res.Domain).Msg("No snapshot to revert to")
				continue
			}
			fmt.Println("Reverted to snapshot for " + res.Domain)
		}

		// A rolled-back guest wakes up with the clock of the snapshot.
		syncResults, err := vm.SyncTime(client, patterns)
		if err != nil {
			return err
		}
		reportSyncResults(syncResults)
		return nil
	},
}

func init() {
	addFormatFlags(snapshotListCmd)
	snapshotCreateCmd.Flags().StringVar(&snapshotDescription, "description", "", "snapshot description")

	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotRevertCmd)
}

// completeSnapshotArgs completes the pattern arguments of the snapshot
// commands. The first argument is a snapshot name, which there is nothing
// to suggest for.
func completeSnapshotArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeDomainPattern(cmd, args, toComplete)
}

func runSnapshotList(args []string) error {
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

	entries, failures, err := vm.ListSnapshots(client, patterns)
	if err != nil {
		return err
	}
	logFailures(failures)

	out, err := formatter.FormatSnapshots(entries)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
