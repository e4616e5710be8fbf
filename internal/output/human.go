package output

import (
	"fmt"

	"github.com/pterm/pterm"
)

// HumanPrinter prints rich terminal output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case TrackResult:
		return printTrack(data)
	case QueueResult:
		return printQueue(data)
	case SearchResult:
		return printSearch(data)
	case StatusResult:
		return printStatus(data)
	case MessageResult:
		pterm.Info.Println(data.Message)
		return nil
	default:
		pterm.Success.Println("ok")
		return nil
	}
}

func printTrack(result TrackResult) error {
	line := result.Title
	if result.Artist != "" {
		line = fmt.Sprintf("%s - %s", result.Artist, result.Title)
	}
	if result.Length != "" {
		line = fmt.Sprintf("%s (%s)", line, result.Length)
	}
	pterm.Success.Printfln("%s: %s", result.Action, line)
	pterm.Debug.Println(result.URL)
	return nil
}

func printQueue(result QueueResult) error {
	if len(result.Tracks) == 0 {
		pterm.Info.Println("queue is empty")
		return nil
	}
	return renderTable("Up next", result.Tracks, true)
}

func printSearch(result SearchResult) error {
	if len(result.Tracks) == 0 {
		pterm.Warning.Printfln("no results for %q", result.Query)
		return nil
	}
	return renderTable(fmt.Sprintf("Results for %q", result.Query), result.Tracks, true)
}

func printStatus(result StatusResult) error {
	if result.Now != nil {
		line := result.Now.Title
		if result.Now.Artist != "" {
			line = fmt.Sprintf("%s - %s", result.Now.Artist, result.Now.Title)
		}
		if result.Now.Length != "" {
			line = fmt.Sprintf("%s (%s)", line, result.Now.Length)
		}
		pterm.DefaultSection.Println("Now playing")
		pterm.Success.Println(line)
	} else {
		pterm.DefaultSection.Println("Now playing")
		pterm.Info.Println("nothing")
	}

	pterm.DefaultSection.Println("Queue")
	if len(result.Queue) == 0 {
		pterm.Info.Println("empty")
	} else if err := renderTable("", result.Queue, true); err != nil {
		return err
	}

	if len(result.History) > 0 {
		pterm.DefaultSection.Println("Recently played")
		if err := renderTable("", result.History, false); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(title string, tracks []TrackLine, numbered bool) error {
	if title != "" {
		pterm.DefaultSection.Println(title)
	}

	header := []string{"TITLE", "ARTIST", "LENGTH"}
	if numbered {
		header = append([]string{"#"}, header...)
	}
	rows := pterm.TableData{header}
	for i, track := range tracks {
		row := []string{track.Title, track.Artist, track.Length}
		if numbered {
			row = append([]string{fmt.Sprintf("%d", i+1)}, row...)
		}
		rows = append(rows, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
