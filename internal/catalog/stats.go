package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"basehive"
)

// StorageStats walks the projects directory tree and sums file sizes
// per project and in total.
func (c *Catalog) StorageStats() (*basehive.StorageStats, error) {
	stats := &basehive.StorageStats{PerProject: make(map[string]int64)}

	entries, err := os.ReadDir(c.projectsRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stats, nil
		}
		return nil, err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var size int64
		root := filepath.Join(c.projectsRoot, e.Name())
		err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
			return nil
		})
		if err != nil {
			return nil, err
		}
		stats.PerProject[e.Name()] = size
		stats.TotalBytes += size
	}
	return stats, nil
}
