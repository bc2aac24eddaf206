package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kiranshivaraju/podzine/pkg/models"
	"github.com/spf13/cobra"
)

func newSubmitCommand(opts *options) *cobra.Command {
	var wait bool
	var interval time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "submit <episode>",
		Short: "Upload an episode and start a new job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			a, err := c.submit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Submitted %s as job %s\n", a.Filename, a.JobID)
			if !wait {
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), a)
				}
				return nil
			}
			return waitAndPrint(cmd, c, interval, asJSON)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the article after submitting")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval when waiting")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of the article text")
	return cmd
}

func newStatusCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the phase of the current job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := opts.client().status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSnapshot(snap))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newWaitCommand(opts *options) *cobra.Command {
	var interval time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for the current job and print its article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return waitAndPrint(cmd, opts.client(), interval, asJSON)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of the article text")
	return cmd
}

func waitAndPrint(cmd *cobra.Command, c *client, interval time.Duration, asJSON bool) error {
	res, err := c.wait(cmd.Context(), interval, func(s models.Snapshot) {
		fmt.Fprintln(cmd.ErrOrStderr(), formatSnapshot(s))
	})
	if err != nil {
		return err
	}

	if asJSON {
		if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), res.Article)
		for _, img := range res.Images {
			fmt.Fprintf(cmd.OutOrStdout(), "image: %s\n", img)
		}
	}
	if res.Failed {
		return fmt.Errorf("job failed")
	}
	return nil
}

func formatSnapshot(s models.Snapshot) string {
	if s.Phase == models.PhaseIdle {
		return "idle (no job submitted)"
	}
	return fmt.Sprintf("%s  %s", s.JobID, s.Phase)
}

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
