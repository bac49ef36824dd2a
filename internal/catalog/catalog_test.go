package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"basehive"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dataRoot := t.TempDir()
	c, err := Open(dataRoot, filepath.Join(dataRoot, "backups"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return c
}

func testProject(id, slug string) *basehive.Project {
	return &basehive.Project{
		ID:        id,
		Name:      slug,
		Slug:      slug,
		Status:    basehive.StatusCreating,
		CreatedAt: time.Now().UTC(),
	}
}

func TestOpen_MissingFileStartsFresh(t *testing.T) {
	c := newTestCatalog(t)
	all, err := c.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("All() len = %d, want 0", len(all))
	}
}

func TestOpen_MalformedFileStartsFresh(t *testing.T) {
	dataRoot := t.TempDir()
	path := filepath.Join(dataRoot, "projects.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(dataRoot, filepath.Join(dataRoot, "backups"))
	if err != nil {
		t.Fatalf("Open() error = %v, want fresh catalog", err)
	}
	all, _ := c.All()
	if len(all) != 0 {
		t.Fatalf("All() len = %d, want 0", len(all))
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("corrupt file not preserved: %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	dataRoot := t.TempDir()
	backupRoot := filepath.Join(dataRoot, "backups")

	c, err := Open(dataRoot, backupRoot)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	p := testProject("p1", "acme-corp")
	if err := c.Save(p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p.UpdatedAt.IsZero() {
		t.Fatal("Save() did not refresh UpdatedAt")
	}

	// Reopen from disk.
	c2, err := Open(dataRoot, backupRoot)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, err := c2.Get("p1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Slug != "acme-corp" {
		t.Fatalf("Get().Slug = %q, want %q", got.Slug, "acme-corp")
	}
}

func TestSave_UpsertsByID(t *testing.T) {
	c := newTestCatalog(t)
	p := testProject("p1", "acme-corp")
	if err := c.Save(p); err != nil {
		t.Fatal(err)
	}

	p.Status = basehive.StatusRunning
	if err := c.Save(p); err != nil {
		t.Fatal(err)
	}

	all, _ := c.All()
	if len(all) != 1 {
		t.Fatalf("All() len = %d, want 1", len(all))
	}
	if all[0].Status != basehive.StatusRunning {
		t.Fatalf("status = %q, want running", all[0].Status)
	}
}

func TestGetBySlug(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Save(testProject("p1", "acme-corp")); err != nil {
		t.Fatal(err)
	}

	got, err := c.GetBySlug("acme-corp")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if got.ID != "p1" {
		t.Fatalf("GetBySlug().ID = %q, want p1", got.ID)
	}

	if _, err := c.GetBySlug("nope"); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatalf("GetBySlug(nope) error = %v, want ErrNotFound", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Save(testProject("p1", "acme-corp")); err != nil {
		t.Fatal(err)
	}

	got, _ := c.Get("p1")
	got.Status = basehive.StatusError

	again, _ := c.Get("p1")
	if again.Status == basehive.StatusError {
		t.Fatal("Get() aliases the stored record")
	}
}

func TestDelete_RemovesRecordAndFiles(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Save(testProject("p1", "acme-corp")); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(c.ProjectsRoot(), "p1", "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete("p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get("p1"); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(filepath.Join(c.ProjectsRoot(), "p1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("project data directory still exists after Delete()")
	}
}

func TestDelete_UnknownProject(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.Delete("nope"); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatalf("Delete(nope) error = %v, want ErrNotFound", err)
	}
}
