package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mikey-austin/musicd/internal/output"
	"github.com/mikey-austin/musicd/pkg/music"
)

func searchCommand() *cobra.Command {
	var (
		limit int
		pick  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search for tracks without playing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := app.withTimeout()
			defer cancel()

			if err := app.ensure(ctx); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			reply, err := app.client.Search(ctx, query, limit)
			if err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}

			if pick && !app.json {
				return pickAndPlay(cmd, query, reply.Results)
			}
			return app.printer.Print(output.SearchResult{
				Query:  query,
				Tracks: trackLines(reply.Results),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results")
	cmd.Flags().BoolVarP(&pick, "play", "p", false, "pick a result interactively and play it")

	return cmd
}

// pickAndPlay shows an interactive chooser over the search results and plays
// the selection by its direct URL.
func pickAndPlay(cmd *cobra.Command, query string, results []music.Item) error {
	app := fromContext(cmd)
	if len(results) == 0 {
		pterm.Warning.Printfln("no results for %q", query)
		return nil
	}

	labels := make([]string, 0, len(results))
	byLabel := make(map[string]music.Item, len(results))
	for i, item := range results {
		label := fmt.Sprintf("%d. %s", i+1, item.Title)
		if item.Artist != "" {
			label = fmt.Sprintf("%d. %s - %s", i+1, item.Artist, item.Title)
		}
		if length := item.DisplayDuration(); length != "" {
			label = fmt.Sprintf("%s (%s)", label, length)
		}
		labels = append(labels, label)
		byLabel[label] = item
	}

	choice, err := pterm.DefaultInteractiveSelect.WithOptions(labels).Show("Pick a track")
	if err != nil {
		return err
	}
	item := byLabel[choice]

	ctx, cancel := app.withTimeout()
	defer cancel()

	reply, err := app.client.Play(ctx, item.WebpageURL)
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
}
