package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/strobe/internal/analysis"
	"github.com/olivier-w/strobe/internal/media"
	"github.com/olivier-w/strobe/internal/player"
	"github.com/olivier-w/strobe/internal/queue"
	"github.com/olivier-w/strobe/internal/scene"
	"github.com/olivier-w/strobe/internal/stage"
	"github.com/olivier-w/strobe/internal/ui"
)

func main() {
	var arg string

	if len(os.Args) < 2 {
		browser := ui.NewBrowser()
		if browser.HasError() {
			fmt.Fprintf(os.Stderr, "Error: %v\n", browser.Error())
			os.Exit(1)
		}
		p := tea.NewProgram(browser, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		bm, ok := finalModel.(ui.BrowserModel)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unexpected model type from browser\n")
			os.Exit(1)
		}
		result := bm.Result()
		if result.Cancelled {
			os.Exit(0)
		}
		arg = result.Path
	} else {
		arg = os.Args[1]
	}

	tracks, err := resolveTracks(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	an := analysis.NewAnalyzer()

	p, err := player.New(tracks.Current().Path, an)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating player: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	st := stage.New(analysis.NewPipeline(an))
	st.Register(scene.NewBars(), stage.Theme{Accent: "#3CE074", Background: "#0B1220", Label: "bars"})
	st.Register(scene.NewRipple(), stage.Theme{Accent: "#00AEFF", Background: "#050A14", Label: "ripple"})
	st.Register(scene.NewWave(), stage.Theme{Accent: "#F26056", Background: "#140A0A", Label: "wave"})

	meta := player.ReadMetadata(tracks.Current().Path)
	model := ui.New(p, an, st, meta, tracks)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveTracks builds the session queue: a playlist file expands to
// its entries, a media file pulls in its playable siblings, and either
// way the chosen track starts first.
func resolveTracks(arg string) (*queue.Queue, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", arg)
	}

	ext := strings.ToLower(filepath.Ext(arg))
	if media.IsPlaylistExt(ext) {
		entries, err := media.ParsePlaylist(arg)
		if err != nil {
			return nil, err
		}
		playable := media.FilterPlayable(entries)
		if len(playable) == 0 {
			return nil, fmt.Errorf("no playable entries in %s", arg)
		}
		return queue.New(trackList(playable)), nil
	}

	if !media.IsSupportedExt(ext) {
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		abs = arg
	}
	siblings := scanMediaFiles(abs)
	if siblings == nil {
		return queue.New(trackList([]string{abs})), nil
	}

	q := queue.New(trackList(siblings))
	for i, f := range siblings {
		if f == abs {
			q.SetCurrentIndex(i)
			break
		}
	}
	return q, nil
}

func trackList(paths []string) []queue.Track {
	tracks := make([]queue.Track, len(paths))
	for i, f := range paths {
		tracks[i] = queue.Track{
			Title: strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)),
			Path:  f,
		}
	}
	return tracks
}

// scanMediaFiles returns all supported media files in the same
// directory as path, sorted case-insensitively. Returns nil if fewer
// than 2 files are found.
func scanMediaFiles(absPath string) []string {
	dir := filepath.Dir(absPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if media.IsSupportedExt(strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) < 2 {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files
}
