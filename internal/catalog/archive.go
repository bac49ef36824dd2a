package catalog

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"basehive"
)

const archiveSuffix = ".tar.gz"

// backupFilename is deterministic: <slug>-<ISO8601 timestamp with
// colons and dots replaced by hyphens>.tar.gz.
func backupFilename(slug string, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.ReplaceAll(ts, ":", "-")
	ts = strings.ReplaceAll(ts, ".", "-")
	return slug + "-" + ts + archiveSuffix
}

// CreateBackup compresses the project's data directory into a
// timestamped archive under the per-project backup directory. The
// caller guarantees the project's container is stopped.
func (c *Catalog) CreateBackup(p *basehive.Project) (*basehive.BackupRecord, error) {
	src := filepath.Join(c.projectsRoot, p.ID)
	if _, err := os.Stat(src); err != nil {
		return nil, fmt.Errorf("project data directory %q: %w", src, err)
	}

	dir := filepath.Join(c.backupRoot, p.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	now := time.Now().UTC()
	filename := backupFilename(p.Slug, now)
	path := filepath.Join(dir, filename)

	if err := writeArchive(path, src, p.ID); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup archive: %w", err)
	}
	return &basehive.BackupRecord{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		Filename:  filename,
		SizeBytes: info.Size(),
		CreatedAt: now,
	}, nil
}

// writeArchive tars src (rooted at one leading component, root) into a
// gzip archive at path.
func writeArchive(path, src, root string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create backup archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	err = filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(root, rel))

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("archive %q: %w", src, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalize tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize gzip: %w", err)
	}
	return out.Sync()
}

// ListBackups lists archives in the project's backup directory, newest
// first. A missing directory yields an empty list, not an error.
func (c *Catalog) ListBackups(projectID string) ([]*basehive.BackupRecord, error) {
	dir := filepath.Join(c.backupRoot, projectID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*basehive.BackupRecord{}, nil
		}
		return nil, fmt.Errorf("read backup directory %q: %w", dir, err)
	}

	out := make([]*basehive.BackupRecord, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), archiveSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, &basehive.BackupRecord{
			ID:        strings.TrimSuffix(e.Name(), archiveSuffix),
			ProjectID: projectID,
			Filename:  e.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// RestoreBackup wipes the project's data directory and re-extracts the
// named archive into it, stripping the archive's single leading path
// component. The caller guarantees the container is stopped.
func (c *Catalog) RestoreBackup(projectID, filename string) error {
	if filename != filepath.Base(filename) || !strings.HasSuffix(filename, archiveSuffix) {
		return fmt.Errorf("backup filename %q: %w", filename, basehive.ErrValidation)
	}
	path := filepath.Join(c.backupRoot, projectID, filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup %q: %w", filename, basehive.ErrNotFound)
		}
		return fmt.Errorf("stat backup %q: %w", filename, err)
	}

	target := filepath.Join(c.projectsRoot, projectID)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clear project data directory: %w", err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("recreate project data directory: %w", err)
	}

	if err := extractArchive(path, target); err != nil {
		return fmt.Errorf("restore backup %q: %w", filename, err)
	}
	return nil
}

// extractArchive unpacks a tar.gz into target, dropping the first path
// component of every entry so the archive layout lands at the
// directory root. Entries escaping target are rejected.
func extractArchive(path, target string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}

		name := stripFirstComponent(hdr.Name)
		if name == "" {
			continue
		}
		dst := filepath.Join(target, filepath.FromSlash(name))
		if !strings.HasPrefix(dst, filepath.Clean(target)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes target directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and specials are not expected in database data
			// directories; skip them rather than restoring surprises.
		}
	}
}

func stripFirstComponent(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return strings.Trim(name[i+1:], "/")
	}
	return ""
}
