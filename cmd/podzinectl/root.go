package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server  string
	timeout time.Duration
}

func (o *options) client() *client {
	return newClient(o.server, o.timeout)
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "podzinectl",
		Short:         "Turn podcast episodes into magazine articles",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	server := os.Getenv("PODZINE_URL")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "Podzine server base URL (env PODZINE_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "http-timeout", 5*time.Minute, "Timeout for a single HTTP request")

	rootCmd.AddCommand(newSubmitCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newWaitCommand(opts))

	return rootCmd
}
