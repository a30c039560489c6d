// Package assetd serves generated meshes to viewers and tells them when a new one lands.
package assetd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoAsset is returned when the directory holds no mesh yet.
var ErrNoAsset = errors.New("assetd: no asset")

// Library is a directory of .stl files.
type Library struct {
	Dir string
}

// IsMesh reports whether name is a file the library serves.
func IsMesh(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".stl")
}

// Latest returns the path of the most recently modified mesh. Ties go to the later name.
func (l *Library) Latest() (string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return "", fmt.Errorf("assetd: %w", err)
	}
	var (
		best    string
		bestMod time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !IsMesh(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if best == "" || mod.After(bestMod) || (mod.Equal(bestMod) && e.Name() > best) {
			best, bestMod = e.Name(), mod
		}
	}
	if best == "" {
		return "", ErrNoAsset
	}
	return filepath.Join(l.Dir, best), nil
}
