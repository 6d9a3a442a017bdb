package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtadm/vms/internal/match"
	"github.com/virtadm/vms/internal/vm"
)

var startCmd = &cobra.Command{
	Use:   "start [patterns...]",
	Short: "Start domains matching the patterns",
	Long: `Start every matching domain that is not already running. Without
patterns every stopped domain is started.`,
	ValidArgsFunction: completeDomainPattern,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := match.Compile(args)
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		results, err := vm.Start(client, patterns)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				log.Error().Err(res.Err).Str("domain", res.Domain).Msg("Failed to start domain")
				continue
			}
			fmt.Println(res.Domain + " started")
		}
		return nil
	},
}

var stopForce bool

var stopCmd = &cobra.Command{
	Use:   "stop [patterns...]",
	Short: "Shut down domains matching the patterns",
	Long: `Ask every matching running domain to shut down and return without
waiting; the guest powers off on its own schedule. With --force the domain
is powered off immediately instead.`,
	ValidArgsFunction: completeDomainPattern,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := match.Compile(args)
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		results, err := vm.Stop(client, patterns, stopForce)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				log.Error().Err(res.Err).Str("domain", res.Domain).Msg("Failed to shut down domain")
				continue
			}
			if stopForce {
				fmt.Println("Powered off " + res.Domain)
			} else {
				fmt.Println("Triggered shutdown of " + res.Domain)
			}
		}
		return nil
	},
}

var synctimeCmd = &cobra.Command{
	Use:   "synctime [patterns...]",
	Short: "Set the host time on matching domains",
	Long: `Set the guest wall clock of every matching running domain to the
current host time through the guest agent.`,
	ValidArgsFunction: completeDomainPattern,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := match.Compile(args)
		if err != nil {
			return err
		}

		client, err := connect()
		if err != nil {
			return err
		}
		defer closeClient(client)

		results, err := vm.SyncTime(client, patterns)
		if err != nil {
			return err
		}
		reportSyncResults(results)
		return nil
	},
}

func init() {
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "power off instead of graceful shutdown")
}

// reportSyncResults prints the synctime outcome per domain. Snapshot revert
// reuses it for the time sync that follows a rollback.
func reportSyncResults(results []vm.SyncResult) {
	for _, res := range results {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("domain", res.Domain).Msg("Failed to set domain time")
			continue
		}
		fmt.Printf("%s time set to %s.%d\n", res.Domain, res.Time.Format("2006-01-02 15:04:05"), res.Time.Nanosecond())
	}
}
