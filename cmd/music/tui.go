package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/musicd/internal/tui"
)

func tuiCommand() *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			if err := app.ensure(ctx); err != nil {
				return err
			}
			return tui.Run(app.client, refresh)
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", time.Second, "status refresh interval")

	return cmd
}
