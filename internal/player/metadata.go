package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds track information for the status line.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads ID3v2 tags from the file. Without a usable tag it
// falls back to the filename, splitting an "Artist - Title" pattern
// when present.
func ReadMetadata(path string) Metadata {
	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
		defer tag.Close()
		m := Metadata{
			Title:  strings.TrimSpace(tag.Title()),
			Artist: strings.TrimSpace(tag.Artist()),
			Album:  strings.TrimSpace(tag.Album()),
		}
		if m.Title != "" {
			return m
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if artist, title, ok := strings.Cut(name, " - "); ok && artist != "" && title != "" {
		return Metadata{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)}
	}
	return Metadata{Title: name}
}
