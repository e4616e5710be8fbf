package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/musicd/internal/output"
)

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is playing, queued and recently played",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			reply, err := app.client.Status(ctx)
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}

			result := output.StatusResult{
				Queue:   trackLines(reply.Queue),
				History: trackLines(reply.History),
			}
			if reply.Now != nil {
				line := trackLine(0, *reply.Now)
				result.Now = &line
			}
			return app.printer.Print(result)
		},
	}
}
