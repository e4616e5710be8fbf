package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/musicd/internal/output"
)

func playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play <query>...",
		Short: "Resolve a query and play it now",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			if err := app.ensure(ctx); err != nil {
				return err
			}

			reply, err := app.client.Play(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}
			return app.printer.Print(output.TrackResult{
				Action: "Playing",
				Title:  reply.Track.Title,
				Artist: reply.Track.Artist,
				URL:    reply.Track.WebpageURL,
				Length: reply.Track.DisplayDuration(),
			})
		},
	}
}

func pauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			reply, err := app.client.Pause(ctx)
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}
			return app.printer.Print(output.MessageResult{Message: "paused"})
		},
	}
}

func resumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			reply, err := app.client.Resume(ctx)
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}
			return app.printer.Print(output.MessageResult{Message: "resumed"})
		},
	}
}

func stopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop playback and clear the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			reply, err := app.client.Stop(ctx)
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}
			return app.printer.Print(output.MessageResult{Message: "stopped"})
		},
	}
}

func nextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Skip to the next queued track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			reply, err := app.client.Next(ctx)
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}
			if reply.Track == nil {
				return app.printer.Print(output.MessageResult{Message: "end of queue"})
			}
			return app.printer.Print(output.TrackResult{
				Action: "Skipped to",
				Title:  reply.Track.Title,
				Artist: reply.Track.Artist,
				URL:    reply.Track.WebpageURL,
				Length: reply.Track.DisplayDuration(),
			})
		},
	}
}
