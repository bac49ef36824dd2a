// Package vault stores per-project bootstrap credentials, durable and
// independent of the catalog so credential exposure can be controlled
// separately from project metadata.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"basehive"
)

const vaultFile = "credentials.json"

type fileFormat struct {
	Credentials []*basehive.Credentials `json:"credentials"`
}

// Vault is a JSON-file credential store with at most one record per
// project id.
type Vault struct {
	path string

	mu      sync.Mutex
	records map[string]*basehive.Credentials
}

// Open loads the vault file under dataRoot. A missing file yields an
// empty vault.
func Open(dataRoot string) (*Vault, error) {
	v := &Vault{
		path:    filepath.Join(dataRoot, vaultFile),
		records: make(map[string]*basehive.Credentials),
	}

	data, err := os.ReadFile(v.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read vault %q: %w", v.path, err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vault %q: %w", v.path, err)
	}
	for _, c := range f.Credentials {
		v.records[c.ProjectID] = c
	}
	return v, nil
}

// Store upserts a credential record by project id, preserving the
// original CreatedAt across updates.
func (v *Vault) Store(c *basehive.Credentials) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now().UTC()
	stored := *c
	stored.UpdatedAt = now
	if existing, ok := v.records[c.ProjectID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	v.records[stored.ProjectID] = &stored
	c.CreatedAt, c.UpdatedAt = stored.CreatedAt, stored.UpdatedAt

	return v.persistLocked()
}

// Get returns the credentials for a project id.
func (v *Vault) Get(projectID string) (*basehive.Credentials, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.records[projectID]
	if !ok {
		return nil, fmt.Errorf("credentials for project %q: %w", projectID, basehive.ErrNotFound)
	}
	out := *c
	return &out, nil
}

// All returns every credential record, sorted by project name, for the
// operator export report.
func (v *Vault) All() ([]*basehive.Credentials, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]*basehive.Credentials, 0, len(v.records))
	for _, c := range v.records {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectName < out[j].ProjectName })
	return out, nil
}

// Update applies a partial update. It fails with ErrNotFound if no
// record exists for the project.
func (v *Vault) Update(projectID string, update basehive.CredentialUpdate) (*basehive.Credentials, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.records[projectID]
	if !ok {
		return nil, fmt.Errorf("credentials for project %q: %w", projectID, basehive.ErrNotFound)
	}
	if update.AdminEmail != nil {
		c.AdminEmail = *update.AdminEmail
	}
	if update.AdminPassword != nil {
		c.AdminPassword = *update.AdminPassword
	}
	c.UpdatedAt = time.Now().UTC()

	if err := v.persistLocked(); err != nil {
		return nil, err
	}
	out := *c
	return &out, nil
}

// Delete removes a project's credentials. Deleting an absent record is
// a no-op.
func (v *Vault) Delete(projectID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.records[projectID]; !ok {
		return nil
	}
	delete(v.records, projectID)
	return v.persistLocked()
}

// persistLocked rewrites the vault file via temp-file + rename. The
// file holds secrets, so it is owner-only.
func (v *Vault) persistLocked() error {
	records := make([]*basehive.Credentials, 0, len(v.records))
	for _, c := range v.records {
		records = append(records, c)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ProjectID < records[j].ProjectID })

	data, err := json.MarshalIndent(fileFormat{Credentials: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vault: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(v.path), vaultFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, v.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
