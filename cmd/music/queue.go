package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/musicd/internal/output"
)

func queueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the play queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare "music queue" lists, "music queue <query>" adds.
			if len(args) == 0 {
				return queueList(cmd)
			}
			return queueAdd(cmd, args)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <query>...",
		Short: "Resolve a query and append the match to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queueAdd(cmd, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the pending queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queueList(cmd)
		},
	})

	return cmd
}

func queueAdd(cmd *cobra.Command, args []string) error {
	app := fromContext(cmd)
	ctx, cancel := app.withTimeout()
	defer cancel()

	if err := app.ensure(ctx); err != nil {
		return err
	}
	reply, err := app.client.QueueAdd(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}
	return app.printer.Print(output.TrackResult{
		Action: "Queued",
		Title:  reply.Item.Title,
		Artist: reply.Item.Artist,
		URL:    reply.Item.WebpageURL,
		Length: reply.Item.DisplayDuration(),
	})
}

func queueList(cmd *cobra.Command) error {
	app := fromContext(cmd)
	ctx, cancel := app.withTimeout()
	defer cancel()

	reply, err := app.client.QueueList(ctx)
	if err != nil {
		return err
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}
	return app.printer.Print(output.QueueResult{Tracks: trackLines(reply.Queue)})
}
