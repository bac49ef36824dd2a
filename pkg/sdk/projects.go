package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"basehive"
)

// Project is a fleet project together with its resolved URLs.
type Project struct {
	basehive.Project
	URL      string `json:"url"`
	AdminURL string `json:"adminUrl"`
}

// CreateProjectRequest describes a new project.
type CreateProjectRequest struct {
	Name       string                 `json:"name"`
	Slug       string                 `json:"slug,omitempty"`
	ClientName string                 `json:"clientName,omitempty"`
	Config     basehive.ProjectConfig `json:"config,omitempty"`
}

// UpdateProjectRequest is a partial project update. Nil fields are left
// unchanged.
type UpdateProjectRequest struct {
	Name       *string                 `json:"name,omitempty"`
	ClientName *string                 `json:"clientName,omitempty"`
	Config     *basehive.ProjectConfig `json:"config,omitempty"`
}

// ListOptions filters and paginates the project list.
type ListOptions struct {
	Status basehive.Status
	Client string
	Search string
	Offset int
	Limit  int
}

// CreateProject provisions a new project and waits for it to come up.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPost, "/v1/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches one project by id or slug.
func (c *Client) GetProject(ctx context.Context, ref string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, projectPath(ref), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects returns matching projects and the total match count
// before pagination.
func (c *Client) ListProjects(ctx context.Context, opts ListOptions) ([]Project, int, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Client != "" {
		q.Set("client", opts.Client)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/v1/projects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Projects []Project `json:"projects"`
		Total    int       `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Projects, out.Total, nil
}

// UpdateProject applies a partial update.
func (c *Client) UpdateProject(ctx context.Context, ref string, req UpdateProjectRequest) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPatch, projectPath(ref), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project. With keepData the record and files
// are retained for later inspection.
func (c *Client) DeleteProject(ctx context.Context, ref string, keepData bool) error {
	path := projectPath(ref)
	if keepData {
		path += "?keepData=true"
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// StartProject brings a stopped project up.
func (c *Client) StartProject(ctx context.Context, ref string) (*Project, error) {
	return c.lifecycle(ctx, ref, "start")
}

// StopProject halts a running project.
func (c *Client) StopProject(ctx context.Context, ref string) (*Project, error) {
	return c.lifecycle(ctx, ref, "stop")
}

// RestartProject restarts a project's container regardless of state.
func (c *Client) RestartProject(ctx context.Context, ref string) (*Project, error) {
	return c.lifecycle(ctx, ref, "restart")
}

func (c *Client) lifecycle(ctx context.Context, ref, op string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPost, projectPath(ref)+"/"+op, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs returns the last tail lines of a project's container output.
func (c *Client) Logs(ctx context.Context, ref string, tail int) (string, error) {
	path := projectPath(ref) + "/logs"
	if tail > 0 {
		path += "?tail=" + strconv.Itoa(tail)
	}
	var out struct {
		Logs string `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Logs, nil
}

// Backup snapshots a project's data directory.
func (c *Client) Backup(ctx context.Context, ref string) (*basehive.BackupRecord, error) {
	var out basehive.BackupRecord
	if err := c.do(ctx, http.MethodPost, projectPath(ref)+"/backups", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBackups lists a project's archives, newest first.
func (c *Client) ListBackups(ctx context.Context, ref string) ([]*basehive.BackupRecord, error) {
	var out struct {
		Backups []*basehive.BackupRecord `json:"backups"`
	}
	if err := c.do(ctx, http.MethodGet, projectPath(ref)+"/backups", nil, &out); err != nil {
		return nil, err
	}
	return out.Backups, nil
}

// Restore replaces a project's data with the named archive's contents.
func (c *Client) Restore(ctx context.Context, ref, filename string) error {
	body := map[string]string{"filename": filename}
	return c.do(ctx, http.MethodPost, projectPath(ref)+"/restore", body, nil)
}

// Stats returns aggregate fleet numbers.
func (c *Client) Stats(ctx context.Context) (*basehive.FleetStats, error) {
	var out basehive.FleetStats
	if err := c.do(ctx, http.MethodGet, "/v1/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Credentials returns a project's stored admin credentials.
func (c *Client) Credentials(ctx context.Context, ref string) (*basehive.Credentials, error) {
	var out basehive.Credentials
	if err := c.do(ctx, http.MethodGet, projectPath(ref)+"/credentials", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCredentials applies a partial credential update.
func (c *Client) UpdateCredentials(ctx context.Context, ref string, update basehive.CredentialUpdate) (*basehive.Credentials, error) {
	var out basehive.Credentials
	if err := c.do(ctx, http.MethodPatch, projectPath(ref)+"/credentials", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCredentials returns every stored credential record.
func (c *Client) ExportCredentials(ctx context.Context) ([]*basehive.Credentials, error) {
	var out struct {
		Credentials []*basehive.Credentials `json:"credentials"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/credentials", nil, &out); err != nil {
		return nil, err
	}
	return out.Credentials, nil
}

// Health checks that the daemon is reachable.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("daemon unhealthy: %s", out.Status)
	}
	return nil
}
