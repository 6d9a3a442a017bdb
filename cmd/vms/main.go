package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtadm/vms/internal/config"
	vmslibvirt "github.com/virtadm/vms/internal/libvirt"
	"github.com/virtadm/vms/internal/output"
)

var (
	version = "dev"
	commit  = "unknown"
)

// connectURIEnv sits between the --connect flag and the config file, the
// same environment variable the libvirt client libraries honor.
const connectURIEnv = "LIBVIRT_DEFAULT_URI"

var (
	connectURI   string
	outputFormat = string(output.FormatTable)
	noHeaders    bool

	loadedConfig = &config.Config{}
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vms",
	Short: "vms - batch management of libvirt domains",
	Long: `vms runs lifecycle, snapshot, and reporting operations against every
libvirt domain whose name matches a set of regular expression patterns.

Commands taking patterns apply to all domains when none are given, and a
pattern matches anywhere in the name. Running vms without a subcommand
lists the domains.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		loadedConfig = cfg

		// The config format applies unless the command's own --format
		// flag was set on the command line.
		if cfg.Format != "" {
			if f := cmd.Flags().Lookup("format"); f == nil || !f.Changed {
				outputFormat = cfg.Format
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(nil)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&connectURI, "connect", "c", "", "libvirt connection URI")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(synctimeCmd)
	rootCmd.AddCommand(addressesCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// resolveConnectURI picks the hypervisor URI: the --connect flag wins, then
// LIBVIRT_DEFAULT_URI, then the config file. Empty falls through to
// qemu:///system inside the client.
func resolveConnectURI() string {
	if connectURI != "" {
		return connectURI
	}
	if uri := os.Getenv(connectURIEnv); uri != "" {
		return uri
	}
	return loadedConfig.Connect
}

// connect opens the connection a command runs against. Failing here is the
// one error that makes the process exit non-zero.
func connect() (*vmslibvirt.Client, error) {
	return vmslibvirt.Connect(resolveConnectURI())
}

func closeClient(client *vmslibvirt.Client) {
	if err := client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close libvirt connection")
	}
}

// addFormatFlags registers the output flags shared by the listing commands.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputFormat, "format", string(output.FormatTable), "output format (table or json)")
	cmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit table headers")
}

func newFormatter() (output.Formatter, error) {
	return output.NewFormatter(output.Options{
		Format:    output.Format(outputFormat),
		NoHeaders: noHeaders,
	})
}

// completeDomainPattern suggests domain names starting with the typed
// prefix for pattern arguments. Completion opens its own short-lived
// connection so it never interferes with the command's own.
func completeDomainPattern(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	client, err := connect()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer closeClient(client)

	domains, err := client.ListAllDomains()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, dom := range domains {
		if strings.HasPrefix(dom.Name, toComplete) {
			names = append(names, dom.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
