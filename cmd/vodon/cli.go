package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/bridge"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/config"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/project"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/util"
)

func runCLI(app *App, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "probe":
		if len(args) < 2 {
			return fmt.Errorf("probe requires at least one file")
		}
		return probeFiles(args[1:])
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("show requires a project file")
		}
		return showProject(util.TrimQuotes(args[1]))
	case "open":
		if len(args) < 2 {
			return fmt.Errorf("open requires a project file")
		}
		return openProject(app, util.TrimQuotes(args[1]))
	case "recent":
		return listRecent(app)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Println("usage: vodon <command> [args]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  probe <file>...    probe video files and print their metadata")
	fmt.Println("  show <project>     print the contents of a saved project")
	fmt.Println("  open <project>     load a project into a session and print its state")
	fmt.Println("  recent             list recently opened projects")
}

func probeFiles(paths []string) error {
	prober := &probe.FFProber{}
	for _, path := range paths {
		// Paths pasted from file managers often arrive quoted.
		path := util.TrimQuotes(path)
		metadata, err := prober.Probe(context.Background(), path)
		if err != nil {
			return fmt.Errorf("failed to probe %s: %w", path, err)
		}
		fmt.Printf("%s\n", path)
		fmt.Printf("  duration:     %.3fs\n", metadata.Duration)
		fmt.Printf("  frame rate:   %d\n", metadata.FrameRate)
		fmt.Printf("  coded size:   %dx%d\n", metadata.CodedWidth, metadata.CodedHeight)
		if metadata.DisplayAspectRatio != "" {
			fmt.Printf("  aspect ratio: %s\n", metadata.DisplayAspectRatio)
		}
	}
	return nil
}

func showProject(path string) error {
	doc, err := project.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s (version %d, saved %s)\n", path, doc.Version, doc.SavedAt.Format("2006-01-02 15:04:05"))
	for _, v := range doc.State.Videos {
		marker := " "
		if v.ID == doc.State.ActiveVideoID {
			marker = "*"
		}
		fmt.Printf("%s %s (%s)\n", marker, v.Name, v.FilePath)
		if v.Offset != nil {
			fmt.Printf("    offset: %.3fs syncTime: %.3fs\n", *v.Offset, v.SyncTime)
		}
		for _, b := range v.Bookmarks {
			fmt.Printf("    [%.3fs] %s\n", b.Time, util.TruncateString(b.Content, 80))
		}
	}
	return nil
}

func openProject(app *App, path string) error {
	payload, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return err
	}
	result, err := app.Bridge.Dispatch(bridge.Request{Command: "project.load", Payload: payload})
	if err != nil {
		return err
	}
	fmt.Printf("loaded %v video(s)\n", result)

	if err := app.Autosave.Start(); err != nil {
		return err
	}

	state := app.Store.State()
	if state.FullDuration != nil {
		fmt.Printf("session length: %.3fs\n", *state.FullDuration)
	}
	for _, v := range state.Videos {
		fmt.Printf("  %s bookmarks=%d\n", v.Name, len(v.Bookmarks))
	}
	return nil
}

func listRecent(app *App) error {
	if app.Library == nil {
		return fmt.Errorf("library unavailable")
	}
	records, err := app.Library.Recent(config.GetInt("library.recentLimit"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No projects in library.")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %s (%d videos, opened %s)\n",
			r.OpenedAt.Format("2006-01-02 15:04"), r.Name, r.VideoCount, r.Path)
	}
	return nil
}
