package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtadm/vms/internal/match"
	"github.com/virtadm/vms/internal/storage"
	"github.com/virtadm/vms/internal/vm"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [patterns...]",
	Short: "Delete domains and their storage volumes",
	Long: `Delete every matching domain: stop it if running, remove its
definition, and delete the storage volumes backing its disks.

Only volumes the storage pools account for are deleted. A disk whose
backing store cannot be resolved to a managed volume is reported and left
alone, never guessed at.`,
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

		reports, err := vm.Delete(client, client, patterns)
		if err != nil {
			return err
		}
		for _, report := range reports {
			renderDeleteReport(report)
		}
		return nil
	},
}

func renderDeleteReport(report vm.DeleteReport) {
	if report.Stopped {
		fmt.Println("Stopped " + report.Domain)
	}
	for _, skip := range report.Skips {
		renderSkip(report.Domain, skip)
	}

	if report.Err != nil {
		log.Error().Err(report.Err).Str("domain", report.Domain).Msg("Failed to delete domain")
		return
	}
	fmt.Println("Deleted " + report.Domain)

	for _, vol := range report.Volumes {
		if vol.Err != nil {
			log.Error().Err(vol.Err).
				Str("domain", report.Domain).
				Str("disk", vol.Target).
				Str("volume", vol.Source).
				Msg("Failed to delete volume")
			continue
		}
		fmt.Printf("Volume %s deleted\n", vol.Source)
	}
}

// renderSkip explains one disk left out of the deletion set. Skips are
// warnings: the domain is still deleted, only its unresolvable storage
// stays behind.
func renderSkip(domain string, skip storage.Skip) {
	switch skip.Kind {
	case storage.SkipMissingTarget:
		log.Warn().Str("domain", domain).
			Msg("Missing target in disk definition")
	case storage.SkipAmbiguousSource:
		log.Warn().Str("domain", domain).Str("disk", skip.Target).
			Msg("Disk source does not identify exactly one backing store")
	case storage.SkipPoolNotFound:
		log.Warn().Str("domain", domain).Str("disk", skip.Target).Str("pool", skip.Pool).
			Msg("Storage pool not found for disk")
	case storage.SkipVolumeNotFound:
		log.Warn().Str("domain", domain).Str("disk", skip.Target).Str("pool", skip.Pool).Str("volume", skip.Source).
			Msg("Storage volume not found for disk")
	case storage.SkipUnmanagedVolume:
		log.Warn().Str("domain", domain).Str("volume", skip.Source).
			Msg("Volume not managed by libvirt, delete manually")
	default:
		log.Warn().Str("domain", domain).Str("disk", skip.Target).Str("reason", skip.Kind.String()).
			Msg("Disk skipped")
	}
}
