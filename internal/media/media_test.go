package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSupportedExt(t *testing.T) {
	for _, ext := range []string{".mp3", ".MP3", ".wav", ".flac", ".Ogg"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("IsSupportedExt(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{".m3u", ".aac", ".txt", ""} {
		if IsSupportedExt(ext) {
			t.Fatalf("IsSupportedExt(%q) = true, want false", ext)
		}
	}
}

func TestIsPlaylistExt(t *testing.T) {
	for _, ext := range []string{".m3u", ".M3U8", ".pls"} {
		if !IsPlaylistExt(ext) {
			t.Fatalf("IsPlaylistExt(%q) = false, want true", ext)
		}
	}
	if IsPlaylistExt(".mp3") {
		t.Fatal("IsPlaylistExt(.mp3) = true, want false")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestParsePlaylistM3U(t *testing.T) {
	dir := t.TempDir()
	playlist := writeFile(t, dir, "mix.m3u", "\uFEFF#EXTM3U\n"+
		"#EXTINF:123,Some Artist - Some Song\n"+
		"one.mp3\n"+
		"\n"+
		"sub/two.flac\n"+
		"https://example.com/stream.mp3\n"+
		filepath.Join(dir, "three.ogg")+"\n")

	got, err := ParsePlaylist(playlist)
	if err != nil {
		t.Fatalf("ParsePlaylist() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "one.mp3"),
		filepath.Join(dir, "sub", "two.flac"),
		filepath.Join(dir, "three.ogg"),
	}
	if len(got) != len(want) {
		t.Fatalf("ParsePlaylist() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParsePlaylistPLS(t *testing.T) {
	dir := t.TempDir()
	playlist := writeFile(t, dir, "mix.pls", "[playlist]\n"+
		"File1=one.mp3\n"+
		"Title1=Some Song\n"+
		"Length1=123\n"+
		"File2=https://example.com/stream.mp3\n"+
		"File3=two.wav\n"+
		"NumberOfEntries=3\n")

	got, err := ParsePlaylist(playlist)
	if err != nil {
		t.Fatalf("ParsePlaylist() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "one.mp3"),
		filepath.Join(dir, "two.wav"),
	}
	if len(got) != len(want) {
		t.Fatalf("ParsePlaylist() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParsePlaylistRejectsUnknownFormat(t *testing.T) {
	if _, err := ParsePlaylist("tracks.txt"); err == nil {
		t.Fatal("ParsePlaylist() accepted a .txt file")
	}
}

func TestFilterPlayable(t *testing.T) {
	dir := t.TempDir()
	track := writeFile(t, dir, "keep.mp3", "x")
	writeFile(t, dir, "note.txt", "x")
	if err := os.Mkdir(filepath.Join(dir, "album.mp3"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	got := FilterPlayable([]string{
		track,
		filepath.Join(dir, "note.txt"),
		filepath.Join(dir, "missing.mp3"),
		filepath.Join(dir, "album.mp3"),
	})
	if len(got) != 1 || got[0] != track {
		t.Fatalf("FilterPlayable() = %v, want just %q", got, track)
	}
}
