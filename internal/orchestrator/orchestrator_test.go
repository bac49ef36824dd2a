package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"basehive"
)

// fakeRuntime records calls and serves canned container state.
type fakeRuntime struct {
	calls []string

	pullErr    error
	createErr  error
	startErr   error
	stopErr    error
	restartErr error
	removeErr  error
	infoErr    error

	// execFailures fails that many Exec calls before succeeding; -1
	// fails forever.
	execFailures int
	execCmds     [][]string

	nextPort   int
	containers map[string]*basehive.ContainerInfo
	logs       string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{nextPort: 8090, containers: make(map[string]*basehive.ContainerInfo)}
}

func (f *fakeRuntime) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeRuntime) EnsureNetwork(context.Context) error {
	f.record("EnsureNetwork")
	return nil
}

func (f *fakeRuntime) PullImage(_ context.Context, ref string) error {
	f.record("PullImage")
	return f.pullErr
}

func (f *fakeRuntime) CreateContainer(_ context.Context, p *basehive.Project, _ string) (basehive.ContainerBinding, error) {
	f.record("CreateContainer")
	if f.createErr != nil {
		return basehive.ContainerBinding{}, f.createErr
	}
	port := f.nextPort
	f.nextPort++
	name := basehive.ContainerName(p.Slug)
	f.containers[name] = &basehive.ContainerInfo{Name: name, Status: "created", HostPorts: []int{port}}
	return basehive.ContainerBinding{ID: "cid-" + p.Slug, Name: name, Port: port}, nil
}

func (f *fakeRuntime) StartContainer(_ context.Context, name string) error {
	f.record("StartContainer " + name)
	if f.startErr != nil {
		return f.startErr
	}
	if c, ok := f.containers[name]; ok {
		c.Running = true
		c.Status = "running"
	}
	return nil
}

func (f *fakeRuntime) StopContainer(_ context.Context, name string) error {
	f.record("StopContainer " + name)
	if f.stopErr != nil {
		return f.stopErr
	}
	if c, ok := f.containers[name]; ok {
		c.Running = false
		c.Status = "exited"
	}
	return nil
}

func (f *fakeRuntime) RestartContainer(_ context.Context, name string) error {
	f.record("RestartContainer " + name)
	if f.restartErr != nil {
		return f.restartErr
	}
	if c, ok := f.containers[name]; ok {
		c.Running = true
		c.Status = "running"
	}
	return nil
}

func (f *fakeRuntime) RemoveContainer(_ context.Context, name string) error {
	f.record("RemoveContainer " + name)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.containers, name)
	return nil
}

func (f *fakeRuntime) ContainerInfo(_ context.Context, name string) (*basehive.ContainerInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	c, ok := f.containers[name]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (f *fakeRuntime) ContainerLogs(_ context.Context, name string, tail int) (string, error) {
	f.record(fmt.Sprintf("ContainerLogs %s %d", name, tail))
	return f.logs, nil
}

func (f *fakeRuntime) Exec(_ context.Context, name string, cmd []string) (string, error) {
	f.record("Exec " + name)
	f.execCmds = append(f.execCmds, cmd)
	if f.execFailures != 0 {
		if f.execFailures > 0 {
			f.execFailures--
		}
		return "", errors.New("service warming up")
	}
	return "ok", nil
}

// fakeCatalog is an in-memory Catalog.
type fakeCatalog struct {
	projects map[string]*basehive.Project
	backups  map[string][]*basehive.BackupRecord

	saveErr    error
	backupErr  error
	restoreErr error
	deleted    []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		projects: make(map[string]*basehive.Project),
		backups:  make(map[string][]*basehive.BackupRecord),
	}
}

func (f *fakeCatalog) Save(p *basehive.Project) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	p.UpdatedAt = time.Now().UTC()
	f.projects[p.ID] = p.Clone()
	return nil
}

func (f *fakeCatalog) Get(id string) (*basehive.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, basehive.ErrNotFound)
	}
	return p.Clone(), nil
}

func (f *fakeCatalog) GetBySlug(slug string) (*basehive.Project, error) {
	for _, p := range f.projects {
		if p.Slug == slug {
			return p.Clone(), nil
		}
	}
	return nil, fmt.Errorf("slug %q: %w", slug, basehive.ErrNotFound)
}

func (f *fakeCatalog) All() ([]*basehive.Project, error) {
	out := make([]*basehive.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (f *fakeCatalog) Delete(id string) error {
	if _, ok := f.projects[id]; !ok {
		return fmt.Errorf("project %q: %w", id, basehive.ErrNotFound)
	}
	delete(f.projects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalog) CreateBackup(p *basehive.Project) (*basehive.BackupRecord, error) {
	if f.backupErr != nil {
		return nil, f.backupErr
	}
	rec := &basehive.BackupRecord{
		ID:        fmt.Sprintf("b%d", len(f.backups[p.ID])+1),
		ProjectID: p.ID,
		Filename:  p.Slug + "-archive.tar.gz",
		SizeBytes: 42,
		CreatedAt: time.Now().UTC(),
	}
	f.backups[p.ID] = append(f.backups[p.ID], rec)
	return rec, nil
}

func (f *fakeCatalog) ListBackups(projectID string) ([]*basehive.BackupRecord, error) {
	return f.backups[projectID], nil
}

func (f *fakeCatalog) RestoreBackup(projectID, filename string) error {
	return f.restoreErr
}

func (f *fakeCatalog) StorageStats() (*basehive.StorageStats, error) {
	return &basehive.StorageStats{PerProject: make(map[string]int64)}, nil
}

// fakeVault is an in-memory Vault.
type fakeVault struct {
	records map[string]*basehive.Credentials
}

func newFakeVault() *fakeVault {
	return &fakeVault{records: make(map[string]*basehive.Credentials)}
}

func (f *fakeVault) Store(c *basehive.Credentials) error {
	cp := *c
	f.records[c.ProjectID] = &cp
	return nil
}

func (f *fakeVault) Get(projectID string) (*basehive.Credentials, error) {
	c, ok := f.records[projectID]
	if !ok {
		return nil, fmt.Errorf("credentials %q: %w", projectID, basehive.ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (f *fakeVault) All() ([]*basehive.Credentials, error) {
	out := make([]*basehive.Credentials, 0, len(f.records))
	for _, c := range f.records {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeVault) Update(projectID string, update basehive.CredentialUpdate) (*basehive.Credentials, error) {
	c, ok := f.records[projectID]
	if !ok {
		return nil, fmt.Errorf("credentials %q: %w", projectID, basehive.ErrNotFound)
	}
	if update.AdminEmail != nil {
		c.AdminEmail = *update.AdminEmail
	}
	if update.AdminPassword != nil {
		c.AdminPassword = *update.AdminPassword
	}
	out := *c
	return &out, nil
}

func (f *fakeVault) Delete(projectID string) error {
	delete(f.records, projectID)
	return nil
}

type testEnv struct {
	orch    *Orchestrator
	runtime *fakeRuntime
	catalog *fakeCatalog
	vault   *fakeVault
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rt := newFakeRuntime()
	cat := newFakeCatalog()
	v := newFakeVault()
	orch := New(rt, cat, v, Options{
		Image:             "ghcr.io/muchobien/pocketbase:latest",
		BaseDomain:        "example.com",
		Defaults:          basehive.ProjectConfig{MemoryLimit: "256m", CPULimit: "0.5"},
		BootstrapAttempts: 3,
		BootstrapDelay:    time.Millisecond,
	})
	return &testEnv{orch: orch, runtime: rt, catalog: cat, vault: v}
}

func TestCreate_DerivesSlugAndRuns(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Slug != "acme-corp" {
		t.Fatalf("Slug = %q, want acme-corp", p.Slug)
	}
	if p.Port != 8090 {
		t.Fatalf("Port = %d, want 8090", p.Port)
	}
	if p.ContainerName != "basehive-acme-corp" {
		t.Fatalf("ContainerName = %q", p.ContainerName)
	}
	if p.Status != basehive.StatusRunning {
		t.Fatalf("Status = %q, want running", p.Status)
	}
	if p.Domain != "acme-corp.example.com" {
		t.Fatalf("Domain = %q", p.Domain)
	}
	if p.Config.MemoryLimit != "256m" {
		t.Fatalf("Config.MemoryLimit = %q, want default applied", p.Config.MemoryLimit)
	}

	want := []string{"EnsureNetwork", "PullImage", "CreateContainer", "StartContainer basehive-acme-corp", "Exec basehive-acme-corp"}
	if !slices.Equal(env.runtime.calls, want) {
		t.Fatalf("runtime calls = %v, want %v", env.runtime.calls, want)
	}

	// Bootstrap succeeded on the first attempt, so credentials landed
	// in the vault.
	creds, err := env.vault.Get(p.ID)
	if err != nil {
		t.Fatalf("vault.Get() error = %v", err)
	}
	if creds.AdminEmail != "admin@acme-corp.example.com" {
		t.Fatalf("AdminEmail = %q", creds.AdminEmail)
	}
	if creds.AdminPassword == "" {
		t.Fatal("AdminPassword is empty")
	}
}

func TestCreate_SequentialPortsAreDistinct(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := env.orch.Create(context.Background(), CreateRequest{Name: "Beta Co"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Port != 8090 || second.Port != 8091 {
		t.Fatalf("ports = %d, %d, want 8090, 8091", first.Port, second.Port)
	}
}

func TestCreate_DuplicateSlugConflicts(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"}); err != nil {
		t.Fatal(err)
	}
	_, err := env.orch.Create(context.Background(), CreateRequest{Name: "Other", Slug: "acme-corp"})
	if !errors.Is(err, basehive.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
}

func TestCreate_DeletedSlugIsReusable(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.orch.Delete(context.Background(), p.ID, true); err != nil {
		t.Fatal(err)
	}

	if _, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"}); err != nil {
		t.Fatalf("Create() after soft delete error = %v", err)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.orch.Create(context.Background(), CreateRequest{Name: "  "}); !errors.Is(err, basehive.ErrValidation) {
		t.Fatalf("Create(empty name) error = %v, want ErrValidation", err)
	}
	if _, err := env.orch.Create(context.Background(), CreateRequest{Name: "X", Slug: "Bad Slug!"}); !errors.Is(err, basehive.ErrValidation) {
		t.Fatalf("Create(bad slug) error = %v, want ErrValidation", err)
	}
}

func TestCreate_StartFailureMarksError(t *testing.T) {
	env := newTestEnv(t)
	env.runtime.startErr = errors.New("boom")

	_, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err == nil {
		t.Fatal("Create() should fail when start fails")
	}

	stored, getErr := env.catalog.GetBySlug("acme-corp")
	if getErr != nil {
		t.Fatalf("GetBySlug() error = %v", getErr)
	}
	if stored.Status != basehive.StatusError {
		t.Fatalf("Status = %q, want error", stored.Status)
	}
	// The container binding made it to the record before the failure.
	if stored.Port != 8090 || stored.ContainerName != "basehive-acme-corp" {
		t.Fatalf("binding not persisted: port=%d name=%q", stored.Port, stored.ContainerName)
	}
}

func TestCreate_BootstrapFailureDoesNotFailCreation(t *testing.T) {
	env := newTestEnv(t)
	env.runtime.execFailures = -1 // never succeeds

	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("Create() error = %v, bootstrap must not fail creation", err)
	}
	if p.Status != basehive.StatusRunning {
		t.Fatalf("Status = %q, want running", p.Status)
	}
	if len(env.runtime.execCmds) != 3 {
		t.Fatalf("exec attempts = %d, want full budget of 3", len(env.runtime.execCmds))
	}
	if _, err := env.vault.Get(p.ID); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatalf("vault.Get() error = %v, want ErrNotFound", err)
	}
}

func TestCreate_BootstrapRetriesUntilSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.runtime.execFailures = 2 // third attempt succeeds

	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.runtime.execCmds) != 3 {
		t.Fatalf("exec attempts = %d, want 3", len(env.runtime.execCmds))
	}
	if _, err := env.vault.Get(p.ID); err != nil {
		t.Fatalf("vault.Get() error = %v, want credentials stored", err)
	}
}

func TestStartStop_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}

	stopped, err := env.orch.Stop(context.Background(), "acme-corp")
	if err != nil {
		t.Fatal(err)
	}
	if stopped.Status != basehive.StatusStopped {
		t.Fatalf("Status = %q, want stopped", stopped.Status)
	}

	callsBefore := len(env.runtime.calls)
	again, err := env.orch.Stop(context.Background(), "acme-corp")
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != basehive.StatusStopped {
		t.Fatalf("Status = %q, want stopped", again.Status)
	}
	if len(env.runtime.calls) != callsBefore {
		t.Fatalf("second Stop() touched the runtime: %v", env.runtime.calls[callsBefore:])
	}

	// Same idempotency for Start on a running project.
	if _, err := env.orch.Start(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}
	callsBefore = len(env.runtime.calls)
	if _, err := env.orch.Start(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}
	if len(env.runtime.calls) != callsBefore {
		t.Fatal("second Start() touched the runtime")
	}
}

func TestRestart_ForcesRunning(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.orch.Stop(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}

	restarted, err := env.orch.Restart(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if restarted.Status != basehive.StatusRunning {
		t.Fatalf("Status = %q, want running", restarted.Status)
	}
}

func TestDelete_KeepData(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.orch.Delete(context.Background(), p.ID, true); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	stored, err := env.catalog.Get(p.ID)
	if err != nil {
		t.Fatalf("record purged despite keepData: %v", err)
	}
	if stored.Status != basehive.StatusDeleted {
		t.Fatalf("Status = %q, want deleted", stored.Status)
	}
	// Credentials are retained.
	if _, err := env.vault.Get(p.ID); err != nil {
		t.Fatalf("credentials purged despite keepData: %v", err)
	}
	// Deleted projects disappear from the default list.
	list, _, err := env.orch.List(ListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("List() len = %d, want 0", len(list))
	}
}

func TestDelete_PurgesEverything(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.orch.Delete(context.Background(), p.ID, false); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.catalog.Get(p.ID); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatalf("catalog.Get() error = %v, want ErrNotFound", err)
	}
	if _, err := env.vault.Get(p.ID); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatalf("vault.Get() error = %v, want ErrNotFound", err)
	}
	if !slices.Contains(env.runtime.calls, "RemoveContainer basehive-acme-corp") {
		t.Fatalf("runtime calls = %v, want RemoveContainer", env.runtime.calls)
	}
}

func TestDelete_ContainerRemovalFailureStillCleansRecord(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}
	env.runtime.removeErr = errors.New("daemon hiccup")

	if err := env.orch.Delete(context.Background(), p.ID, false); err != nil {
		t.Fatalf("Delete() error = %v, container removal must not be fatal", err)
	}
	if _, err := env.catalog.Get(p.ID); !errors.Is(err, basehive.ErrNotFound) {
		t.Fatal("record not cleaned up after failed container removal")
	}
}

func TestList_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.orch.Create(ctx, CreateRequest{Name: "Acme Corp", ClientName: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.orch.Create(ctx, CreateRequest{Name: "Beta Co", ClientName: "Beta"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.orch.Stop(ctx, "beta-co"); err != nil {
		t.Fatal(err)
	}

	list, total, err := env.orch.List(ListRequest{Status: basehive.StatusStopped})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(list) != 1 || list[0].Slug != "beta-co" {
		t.Fatalf("status filter: got %d/%d", len(list), total)
	}

	list, _, err = env.orch.List(ListRequest{Client: "acme"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Slug != "acme-corp" {
		t.Fatalf("client filter mismatch: %v", list)
	}

	list, _, err = env.orch.List(ListRequest{Search: "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Slug != "beta-co" {
		t.Fatalf("search filter mismatch: %v", list)
	}

	list, total, err = env.orch.List(ListRequest{Offset: 1, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(list) != 1 {
		t.Fatalf("pagination: got %d/%d, want 1/2", len(list), total)
	}
}

func TestURLResolution(t *testing.T) {
	env := newTestEnv(t)
	p := &basehive.Project{Slug: "acme-corp", Domain: "acme-corp.example.com", Port: 8090}

	if got := env.orch.URL(p); got != "https://acme-corp.example.com" {
		t.Fatalf("URL() = %q", got)
	}
	if got := env.orch.AdminURL(p); got != "https://acme-corp.example.com/_/" {
		t.Fatalf("AdminURL() = %q", got)
	}

	local := New(env.runtime, env.catalog, env.vault, Options{BaseDomain: "localhost"})
	if got := local.URL(p); got != "http://localhost:8090" {
		t.Fatalf("URL() with localhost base = %q", got)
	}
}

func TestUpdate_Partial(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orch.Create(context.Background(), CreateRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatal(err)
	}

	name := "Acme Corporation"
	mem := "512m"
	updated, err := env.orch.Update(context.Background(), p.ID, UpdateRequest{
		Name:   &name,
		Config: &basehive.ProjectConfig{MemoryLimit: mem},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != name {
		t.Fatalf("Name = %q", updated.Name)
	}
	if updated.Slug != "acme-corp" {
		t.Fatalf("Slug changed to %q", updated.Slug)
	}
	if updated.Config.MemoryLimit != "512m" || updated.Config.CPULimit != "0.5" {
		t.Fatalf("Config merge wrong: %+v", updated.Config)
	}
}
