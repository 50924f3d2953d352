package media

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParsePlaylist reads a local .m3u/.m3u8/.pls file into absolute track
// paths. Relative entries resolve against the playlist directory;
// comments, blank lines, and URLs are skipped.
func ParsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	defer f.Close()

	baseDir := filepath.Dir(abs)
	scanner := bufio.NewScanner(f)

	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if ext == ".pls" {
			line = plsFileValue(line)
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "://") {
			continue
		}
		entries = append(entries, resolveEntry(line, baseDir))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	return entries, nil
}

// FilterPlayable keeps only existing, non-directory, supported files.
func FilterPlayable(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// plsFileValue extracts the value of a FileN= line, returning "" for
// every other PLS line.
func plsFileValue(line string) string {
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, "File") || len(key) == len("File") {
		return ""
	}
	for _, r := range key[len("File"):] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return strings.TrimSpace(val)
}

func resolveEntry(raw, baseDir string) string {
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(baseDir, p))
}
