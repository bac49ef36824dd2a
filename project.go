// Package basehive defines the domain model for the basehive control
// plane: tenant projects, their lifecycle status, backup records, and
// bootstrap credentials. Stores and the orchestrator build on these types.
package basehive

import (
	"time"
)

// Status is a project's lifecycle state.
type Status string

const (
	StatusCreating Status = "creating"
	StatusRunning  Status = "running"
	StatusStopped  Status = "stopped"
	StatusError    Status = "error"
	StatusDeleted  Status = "deleted" // terminal
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusCreating, StatusRunning, StatusStopped, StatusError, StatusDeleted:
		return true
	}
	return false
}

// ProjectConfig holds per-project resource limits and feature toggles.
// It is merged from system defaults and caller-supplied overrides at
// creation time.
type ProjectConfig struct {
	MemoryLimit string          `json:"memoryLimit" yaml:"memory-limit"` // docker-style, e.g. "256m"
	CPULimit    string          `json:"cpuLimit" yaml:"cpu-limit"`       // fractional CPUs, e.g. "0.5"
	AutoBackup  bool            `json:"autoBackup" yaml:"auto-backup"`
	Features    map[string]bool `json:"features,omitempty" yaml:"features,omitempty"`
}

// Merge returns c with non-zero fields from override applied on top.
func (c ProjectConfig) Merge(override ProjectConfig) ProjectConfig {
	out := c
	if override.MemoryLimit != "" {
		out.MemoryLimit = override.MemoryLimit
	}
	if override.CPULimit != "" {
		out.CPULimit = override.CPULimit
	}
	if override.AutoBackup {
		out.AutoBackup = true
	}
	if len(override.Features) > 0 {
		merged := make(map[string]bool, len(c.Features)+len(override.Features))
		for k, v := range c.Features {
			merged[k] = v
		}
		for k, v := range override.Features {
			merged[k] = v
		}
		out.Features = merged
	}
	return out
}

// Project is one tenant's isolated database instance as tracked by the
// control plane. The catalog owns the persisted record; the orchestrator
// holds a transient copy during multi-step operations.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"` // unique among non-deleted projects, immutable
	ClientName string `json:"clientName,omitempty"`

	ContainerName string `json:"containerName"` // derived from slug, empty until created
	Port          int    `json:"port"`          // allocated host port, 0 until created
	Domain        string `json:"domain"`        // <slug>.<baseDomain>

	Status Status        `json:"status"`
	Config ProjectConfig `json:"config"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// catalog's in-memory record.
func (p *Project) Clone() *Project {
	out := *p
	if p.Config.Features != nil {
		out.Config.Features = make(map[string]bool, len(p.Config.Features))
		for k, v := range p.Config.Features {
			out.Config.Features[k] = v
		}
	}
	return &out
}

// BackupRecord describes one archive snapshot of a project's data
// directory. Backups are immutable once created.
type BackupRecord struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials is a project's bootstrap admin identity. Project name,
// slug and domain are denormalized so operator reports need no catalog
// join.
type Credentials struct {
	ProjectID     string    `json:"projectId"`
	ProjectName   string    `json:"projectName"`
	Slug          string    `json:"slug"`
	Domain        string    `json:"domain"`
	AdminEmail    string    `json:"adminEmail"`
	AdminPassword string    `json:"adminPassword"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CredentialUpdate is a partial update to a stored credential record.
// Nil fields are left unchanged.
type CredentialUpdate struct {
	AdminEmail    *string `json:"adminEmail,omitempty"`
	AdminPassword *string `json:"adminPassword,omitempty"`
}

// ContainerBinding is the runtime identity handed back when a
// project's container is created.
type ContainerBinding struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Port int    `json:"port"`
}

// ContainerInfo is a read-only projection of what the container runtime
// reports right now. Never persisted; always fetched fresh.
type ContainerInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // runtime's own status string
	Running   bool      `json:"running"`
	HostPorts []int     `json:"hostPorts,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	StartedAt time.Time `json:"startedAt"`

	// Point-in-time usage, zero when the container is not running.
	MemoryBytes uint64  `json:"memoryBytes"`
	CPUPercent  float64 `json:"cpuPercent"`
}

// StorageStats sums on-disk usage across project data directories.
type StorageStats struct {
	TotalBytes int64            `json:"totalBytes"`
	PerProject map[string]int64 `json:"perProject"`
}

// FleetStats is the aggregate report across the whole fleet.
type FleetStats struct {
	Projects    int            `json:"projects"`
	ByStatus    map[Status]int `json:"byStatus"`
	Storage     StorageStats   `json:"storage"`
	MemoryBytes uint64         `json:"memoryBytes"` // sum over running containers
}
