package main

import (
	"github.com/spf13/cobra"
)

var version = "dev" // set at build time using -ldflags

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "healthmon <command> [flags]",
		Short:        "Monitor endpoint health with adaptive timeouts",
		Long:         "healthmon probes configured endpoints, classifies their health and serves the results over HTTP.",
		SilenceUsage: true,
		Version:      version,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML config file (HEALTHMON_* environment variables override it)")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTokenCmd(opts))

	return root
}
