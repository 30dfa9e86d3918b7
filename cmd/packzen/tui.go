package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/packzen/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var tripID string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Pack a trip interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			c, err := a.login(ctx)
			if err != nil {
				return err
			}
			trip := c.Trip(tripID)
			if _, err := trip.Snapshot(ctx); err != nil {
				return fmt.Errorf("open trip %s: %w", tripID, err)
			}
			return tui.Run(ctx, tui.Options{
				Trip:    trip,
				Library: c,
				Title:   tripID,
			})
		},
	}
	tripFlag(cmd, &tripID)
	return cmd
}
