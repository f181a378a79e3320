package engine

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/user/framecast/pkg/ports"
)

// resolvePlaylist expands an .m3u playlist into its entries. Any other path
// is treated as a single media item. Relative entries are resolved against
// the playlist's directory.
func resolvePlaylist(fs ports.FileSystem, path string) ([]string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".m3u") {
		return []string{path}, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		entries = append(entries, line)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("playlist %s has no entries", path)
	}
	return entries, nil
}

// selectEntry picks the playlist entry to play: the first one, or a seeded
// random pick when shuffle is on.
func selectEntry(entries []string, shuffle bool, seed int64) int {
	if !shuffle || len(entries) < 2 {
		return 0
	}
	return rand.New(rand.NewSource(seed)).Intn(len(entries))
}
