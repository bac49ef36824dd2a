// Package orchestrator is the top-level lifecycle state machine: it
// turns a creation request into a running, isolated database instance,
// coordinates stop/backup/restore/start sequences, and reconciles
// recorded state against observed reality. It talks to the runtime and
// disk only through its collaborators.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"basehive"
)

// adminPath is the database admin panel suffix appended to a project's
// public URL.
const adminPath = "/_/"

// Options configure an Orchestrator.
type Options struct {
	// Image is the database image run for every project.
	Image string
	// BaseDomain builds per-project domains; "localhost" disables
	// HTTPS URL resolution.
	BaseDomain string
	// Defaults are merged under per-project config overrides.
	Defaults basehive.ProjectConfig

	// BootstrapAttempts bounds the admin bootstrap polling loop;
	// BootstrapDelay is the fixed pause between attempts.
	BootstrapAttempts int
	BootstrapDelay    time.Duration
}

// Orchestrator composes the runtime adapter, the catalog, and the
// vault. One instance per process; lifecycle operations for a project
// run to completion before the caller gets a result.
type Orchestrator struct {
	runtime ContainerRuntime
	catalog Catalog
	vault   Vault
	opts    Options

	// createMu serializes the slug-uniqueness check with the initial
	// record write so concurrent creates cannot race a duplicate slug
	// past the check.
	createMu sync.Mutex
}

// New returns an Orchestrator over the given collaborators.
func New(runtime ContainerRuntime, catalog Catalog, vault Vault, opts Options) *Orchestrator {
	if opts.BootstrapAttempts <= 0 {
		opts.BootstrapAttempts = 10
	}
	if opts.BootstrapDelay <= 0 {
		opts.BootstrapDelay = 3 * time.Second
	}
	return &Orchestrator{runtime: runtime, catalog: catalog, vault: vault, opts: opts}
}

// CreateRequest describes a new project.
type CreateRequest struct {
	Name       string                 `json:"name"`
	Slug       string                 `json:"slug,omitempty"`
	ClientName string                 `json:"clientName,omitempty"`
	Config     basehive.ProjectConfig `json:"config,omitempty"`
}

// Create provisions a project end to end: persist a creating record,
// pull the image, create and start the container, then best-effort
// bootstrap an admin user inside it. Runtime failures mark the project
// status error before propagating; a bootstrap failure is logged and
// never fails the creation.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*basehive.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("project name required: %w", basehive.ErrValidation)
	}
	slug := req.Slug
	if slug == "" {
		slug = basehive.Slugify(name)
	}
	if err := basehive.ValidateSlug(slug); err != nil {
		return nil, err
	}

	project, err := o.reserveProject(name, slug, req)
	if err != nil {
		return nil, err
	}

	fail := func(step string, cause error) (*basehive.Project, error) {
		project.Status = basehive.StatusError
		if saveErr := o.catalog.Save(project); saveErr != nil {
			slog.Error("Failed to persist error status.", "project", project.ID, "err", saveErr)
		}
		return nil, fmt.Errorf("%s for project %q: %w", step, project.Slug, cause)
	}

	if err := o.runtime.EnsureNetwork(ctx); err != nil {
		return fail("ensure network", err)
	}
	if err := o.runtime.PullImage(ctx, o.opts.Image); err != nil {
		return fail("pull image", err)
	}

	binding, err := o.runtime.CreateContainer(ctx, project, o.opts.Image)
	if err != nil {
		return fail("create container", err)
	}
	project.ContainerName = binding.Name
	project.Port = binding.Port
	if err := o.catalog.Save(project); err != nil {
		return fail("persist container binding", err)
	}

	if err := o.runtime.StartContainer(ctx, project.ContainerName); err != nil {
		return fail("start container", err)
	}
	project.Status = basehive.StatusRunning
	if err := o.catalog.Save(project); err != nil {
		return fail("persist running status", err)
	}

	o.bootstrap(ctx, project)

	slog.Info("Project created.", "project", project.ID, "slug", project.Slug, "port", project.Port)
	return project, nil
}

// reserveProject checks slug uniqueness and persists the initial
// creating record under the create mutex, closing the check-then-write
// race between concurrent creates.
func (o *Orchestrator) reserveProject(name, slug string, req CreateRequest) (*basehive.Project, error) {
	o.createMu.Lock()
	defer o.createMu.Unlock()

	all, err := o.catalog.All()
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.Slug == slug && p.Status != basehive.StatusDeleted {
			return nil, fmt.Errorf("slug %q already in use: %w", slug, basehive.ErrConflict)
		}
	}

	project := &basehive.Project{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       slug,
		ClientName: strings.TrimSpace(req.ClientName),
		Domain:     basehive.ProjectDomain(slug, o.opts.BaseDomain),
		Status:     basehive.StatusCreating,
		Config:     o.opts.Defaults.Merge(req.Config),
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.catalog.Save(project); err != nil {
		return nil, fmt.Errorf("persist new project: %w", err)
	}
	return project, nil
}

// Get resolves a project by id or slug, including soft-deleted records.
func (o *Orchestrator) Get(ref string) (*basehive.Project, error) {
	return o.resolveAny(ref)
}

// resolveAny looks a project up by id first, then slug.
func (o *Orchestrator) resolveAny(ref string) (*basehive.Project, error) {
	p, err := o.catalog.Get(ref)
	if err == nil {
		return p, nil
	}
	return o.catalog.GetBySlug(ref)
}

// resolve is resolveAny restricted to live (non-deleted) projects.
func (o *Orchestrator) resolve(ref string) (*basehive.Project, error) {
	p, err := o.resolveAny(ref)
	if err != nil {
		return nil, err
	}
	if p.Status == basehive.StatusDeleted {
		return nil, fmt.Errorf("project %q is deleted: %w", ref, basehive.ErrNotFound)
	}
	return p, nil
}

// ListRequest filters and paginates the project list.
type ListRequest struct {
	Status basehive.Status // empty matches all live projects
	Client string          // exact client-name match, case-insensitive
	Search string          // substring across name, slug, client name
	Offset int
	Limit  int // <= 0 means no limit
}

// List returns matching projects (oldest first) and the total match
// count before pagination. Soft-deleted projects only appear when
// explicitly requested via Status.
func (o *Orchestrator) List(req ListRequest) ([]*basehive.Project, int, error) {
	all, err := o.catalog.All()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*basehive.Project, 0, len(all))
	for _, p := range all {
		if req.Status != "" {
			if p.Status != req.Status {
				continue
			}
		} else if p.Status == basehive.StatusDeleted {
			continue
		}
		if req.Client != "" && !strings.EqualFold(p.ClientName, req.Client) {
			continue
		}
		if req.Search != "" && !matchesSearch(p, req.Search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })

	total := len(matched)
	if req.Offset > 0 {
		if req.Offset >= total {
			return []*basehive.Project{}, total, nil
		}
		matched = matched[req.Offset:]
	}
	if req.Limit > 0 && len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}
	return matched, total, nil
}

func matchesSearch(p *basehive.Project, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), s) ||
		strings.Contains(strings.ToLower(p.Slug), s) ||
		strings.Contains(strings.ToLower(p.ClientName), s)
}

// UpdateRequest is a partial project update. The slug is immutable.
type UpdateRequest struct {
	Name       *string                 `json:"name,omitempty"`
	ClientName *string                 `json:"clientName,omitempty"`
	Config     *basehive.ProjectConfig `json:"config,omitempty"`
}

// Update applies a partial update to a live project. Config changes
// take effect the next time the container is recreated.
func (o *Orchestrator) Update(ctx context.Context, ref string, req UpdateRequest) (*basehive.Project, error) {
	p, err := o.resolve(ref)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("project name required: %w", basehive.ErrValidation)
		}
		p.Name = name
	}
	if req.ClientName != nil {
		p.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.Config != nil {
		p.Config = p.Config.Merge(*req.Config)
	}

	if err := o.catalog.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Start brings a project's container up. Starting an already-running
// project is a no-op returning the current record.
func (o *Orchestrator) Start(ctx context.Context, ref string) (*basehive.Project, error) {
	p, err := o.resolve(ref)
	if err != nil {
		return nil, err
	}
	if p.Status == basehive.StatusRunning {
		return p, nil
	}

	if err := o.runtime.StartContainer(ctx, p.ContainerName); err != nil {
		return nil, err
	}
	p.Status = basehive.StatusRunning
	if err := o.catalog.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Stop halts a project's container. Stopping an already-stopped
// project is a no-op returning the current record.
func (o *Orchestrator) Stop(ctx context.Context, ref string) (*basehive.Project, error) {
	p, err := o.resolve(ref)
	if err != nil {
		return nil, err
	}
	if p.Status == basehive.StatusStopped {
		return p, nil
	}

	if err := o.runtime.StopContainer(ctx, p.ContainerName); err != nil {
		return nil, err
	}
	p.Status = basehive.StatusStopped
	if err := o.catalog.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Restart forces a runtime restart and sets the status to running
// regardless of the prior state.
func (o *Orchestrator) Restart(ctx context.Context, ref string) (*basehive.Project, error) {
	p, err := o.resolve(ref)
	if err != nil {
		return nil, err
	}

	if err := o.runtime.RestartContainer(ctx, p.ContainerName); err != nil {
		return nil, err
	}
	p.Status = basehive.StatusRunning
	if err := o.catalog.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project. The container removal is best-effort; the
// record cleanup happens regardless. With keepData the record is kept
// with status deleted and files and credentials are retained; otherwise
// the catalog record, its files, and the vault entry are purged.
func (o *Orchestrator) Delete(ctx context.Context, ref string, keepData bool) error {
	p, err := o.resolveAny(ref)
	if err != nil {
		return err
	}

	if p.ContainerName != "" {
		if err := o.runtime.RemoveContainer(ctx, p.ContainerName); err != nil {
			slog.Warn("Container removal failed during delete.", "project", p.ID, "container", p.ContainerName, "err", err)
		}
	}

	if keepData {
		p.Status = basehive.StatusDeleted
		return o.catalog.Save(p)
	}

	if err := o.catalog.Delete(p.ID); err != nil {
		return err
	}
	if err := o.vault.Delete(p.ID); err != nil {
		slog.Warn("Credential cleanup failed during delete.", "project", p.ID, "err", err)
	}
	return nil
}

// Logs returns the last tail lines of the project's container output.
func (o *Orchestrator) Logs(ctx context.Context, ref string, tail int) (string, error) {
	p, err := o.resolve(ref)
	if err != nil {
		return "", err
	}
	if tail <= 0 {
		tail = 100
	}
	return o.runtime.ContainerLogs(ctx, p.ContainerName, tail)
}

// URL resolves a project's externally reachable base URL.
func (o *Orchestrator) URL(p *basehive.Project) string {
	if o.opts.BaseDomain != "" && o.opts.BaseDomain != "localhost" {
		return "https://" + p.Domain
	}
	return fmt.Sprintf("http://localhost:%d", p.Port)
}

// AdminURL resolves a project's admin panel URL.
func (o *Orchestrator) AdminURL(p *basehive.Project) string {
	return o.URL(p) + adminPath
}

// Stats aggregates fleet-wide numbers: project counts by status,
// on-disk storage, and point-in-time memory across running containers.
func (o *Orchestrator) Stats(ctx context.Context) (*basehive.FleetStats, error) {
	all, err := o.catalog.All()
	if err != nil {
		return nil, err
	}
	storage, err := o.catalog.StorageStats()
	if err != nil {
		return nil, err
	}

	stats := &basehive.FleetStats{
		ByStatus: make(map[basehive.Status]int),
		Storage:  *storage,
	}
	for _, p := range all {
		if p.Status == basehive.StatusDeleted {
			continue
		}
		stats.Projects++
		stats.ByStatus[p.Status]++

		if p.Status == basehive.StatusRunning && p.ContainerName != "" {
			info, err := o.runtime.ContainerInfo(ctx, p.ContainerName)
			if err != nil || info == nil {
				continue
			}
			stats.MemoryBytes += info.MemoryBytes
		}
	}
	return stats, nil
}

// Credentials returns the stored bootstrap credentials for a project.
func (o *Orchestrator) Credentials(ref string) (*basehive.Credentials, error) {
	p, err := o.resolveAny(ref)
	if err != nil {
		return nil, err
	}
	return o.vault.Get(p.ID)
}

// ExportCredentials returns every stored credential record for the
// operator report.
func (o *Orchestrator) ExportCredentials() ([]*basehive.Credentials, error) {
	return o.vault.All()
}

// UpdateCredentials applies a partial credential update for a project.
func (o *Orchestrator) UpdateCredentials(ref string, update basehive.CredentialUpdate) (*basehive.Credentials, error) {
	p, err := o.resolveAny(ref)
	if err != nil {
		return nil, err
	}
	return o.vault.Update(p.ID, update)
}
