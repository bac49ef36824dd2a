// Package catalog is the durable record of every project: a single
// JSON file loaded at startup and rewritten wholesale after every
// mutation, plus backup-archive management for project data
// directories.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"basehive"
)

const catalogFile = "projects.json"

// fileFormat is the on-disk shape of the catalog file.
type fileFormat struct {
	Projects []*basehive.Project `json:"projects"`
}

// Catalog owns persisted project records. All methods are safe for
// concurrent use within one process; nothing guards against a second
// process writing the same file.
type Catalog struct {
	path         string
	projectsRoot string
	backupRoot   string

	mu       sync.Mutex
	projects map[string]*basehive.Project
}

// Open loads the catalog file under dataRoot, creating a fresh empty
// catalog when the file is missing or unparseable. Any other read
// failure is fatal (ErrCatalogCorrupt).
func Open(dataRoot, backupRoot string) (*Catalog, error) {
	c := &Catalog{
		path:         filepath.Join(dataRoot, catalogFile),
		projectsRoot: filepath.Join(dataRoot, "projects"),
		backupRoot:   backupRoot,
		projects:     make(map[string]*basehive.Project),
	}
	if err := os.MkdirAll(c.projectsRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create projects root: %w", err)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read catalog %q: %w: %w", c.path, basehive.ErrCatalogCorrupt, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		// An unparseable catalog starts fresh rather than blocking the
		// daemon; the old file is preserved alongside for remediation.
		slog.Warn("Catalog file unparseable, starting fresh.", "path", c.path, "err", err)
		if backupErr := os.Rename(c.path, c.path+".corrupt"); backupErr != nil {
			slog.Warn("Could not preserve corrupt catalog file.", "err", backupErr)
		}
		return c, nil
	}
	for _, p := range f.Projects {
		c.projects[p.ID] = p
	}
	return c, nil
}

// ProjectsRoot is the directory holding per-project data directories.
func (c *Catalog) ProjectsRoot() string { return c.projectsRoot }

// Save upserts a project by id, refreshing UpdatedAt, and rewrites the
// catalog file.
func (c *Catalog) Save(p *basehive.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := p.Clone()
	stored.UpdatedAt = time.Now().UTC()
	c.projects[stored.ID] = stored
	p.UpdatedAt = stored.UpdatedAt

	return c.persistLocked()
}

// Get returns the project with the given id.
func (c *Catalog) Get(id string) (*basehive.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, basehive.ErrNotFound)
	}
	return p.Clone(), nil
}

// GetBySlug returns the project with the given slug, regardless of
// status. Callers filter deleted records themselves.
func (c *Catalog) GetBySlug(slug string) (*basehive.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.projects {
		if p.Slug == slug {
			return p.Clone(), nil
		}
	}
	return nil, fmt.Errorf("project slug %q: %w", slug, basehive.ErrNotFound)
}

// All returns every record regardless of status, sorted by creation
// time (oldest first).
func (c *Catalog) All() ([]*basehive.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*basehive.Project, 0, len(c.projects))
	for _, p := range c.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Delete removes the record and recursively deletes the project's
// on-disk data directory. A file deletion failure is logged, not fatal
// to the record deletion.
func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.projects[id]; !ok {
		return fmt.Errorf("project %q: %w", id, basehive.ErrNotFound)
	}
	delete(c.projects, id)
	if err := c.persistLocked(); err != nil {
		return err
	}

	dir := filepath.Join(c.projectsRoot, id)
	if err := os.RemoveAll(dir); err != nil {
		slog.Error("Failed to delete project data directory.", "project", id, "dir", dir, "err", err)
	}
	return nil
}

// persistLocked rewrites the whole catalog file: marshal to a temp file
// in the same directory, then atomically rename over the target so a
// crash leaves either the old or the new content.
func (c *Catalog) persistLocked() error {
	projects := make([]*basehive.Project, 0, len(c.projects))
	for _, p := range c.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.Before(projects[j].CreatedAt) })

	data, err := json.MarshalIndent(fileFormat{Projects: projects}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return writeFileAtomic(c.path, data)
}

// writeFileAtomic writes data to a temp file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
