package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/musicd/internal/client"
	"github.com/mikey-austin/musicd/internal/output"
	"github.com/mikey-austin/musicd/pkg/music"
)

type app struct {
	client  *client.Client
	printer output.Printer
	json    bool
	timeout time.Duration
}

func main() {
	root := &cobra.Command{
		Use:           "music",
		Short:         "Control a musicd background player",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var (
		host      string
		port      int
		timeout   time.Duration
		jsonOut   bool
		autostart bool
		daemonBin string
	)

	root.PersistentFlags().StringVar(&host, "host", "", "musicd host (default $MUSICD_HOST or 127.0.0.1)")
	root.PersistentFlags().IntVar(&port, "port", 0, "musicd port (default $MUSICD_PORT or 5000)")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output json")
	root.PersistentFlags().BoolVar(&autostart, "autostart", true, "start musicd when it is not running")
	root.PersistentFlags().StringVar(&daemonBin, "daemon-bin", "", "musicd binary for autostart")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c := client.New(client.Options{
			Host:      host,
			Port:      port,
			Timeout:   timeout,
			Autostart: autostart,
			DaemonBin: daemonBin,
		})

		var printer output.Printer
		if jsonOut {
			printer = output.JSONPrinter{}
		} else {
			printer = output.HumanPrinter{}
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
			client:  c,
			printer: printer,
			json:    jsonOut,
			timeout: timeout,
		}))
		return nil
	}

	root.AddCommand(playCommand())
	root.AddCommand(pauseCommand())
	root.AddCommand(resumeCommand())
	root.AddCommand(stopCommand())
	root.AddCommand(nextCommand())
	root.AddCommand(queueCommand())
	root.AddCommand(searchCommand())
	root.AddCommand(statusCommand())
	root.AddCommand(tuiCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *app {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*app)
}

func (a *app) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// ensure verifies the daemon is reachable, autostarting it when allowed.
func (a *app) ensure(ctx context.Context) error {
	return a.client.EnsureDaemon(ctx)
}

func trackLine(index int, item music.Item) output.TrackLine {
	return output.TrackLine{
		Index:  index,
		Title:  item.Title,
		Artist: item.Artist,
		Length: item.DisplayDuration(),
		URL:    item.WebpageURL,
	}
}

func trackLines(items []music.Item) []output.TrackLine {
	lines := make([]output.TrackLine, 0, len(items))
	for i, item := range items {
		lines = append(lines, trackLine(i+1, item))
	}
	return lines
}
