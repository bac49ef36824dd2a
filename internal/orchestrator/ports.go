package orchestrator

import (
	"context"

	"basehive"
)

// ContainerRuntime abstracts the container runtime adapter.
// Production: adapter/docker.Runtime
// Testing: call-recording fake
type ContainerRuntime interface {
	EnsureNetwork(ctx context.Context) error
	PullImage(ctx context.Context, ref string) error
	CreateContainer(ctx context.Context, project *basehive.Project, image string) (basehive.ContainerBinding, error)
	StartContainer(ctx context.Context, name string) error
	StopContainer(ctx context.Context, name string) error
	RestartContainer(ctx context.Context, name string) error
	RemoveContainer(ctx context.Context, name string) error
	ContainerInfo(ctx context.Context, name string) (*basehive.ContainerInfo, error)
	ContainerLogs(ctx context.Context, name string, tail int) (string, error)
	Exec(ctx context.Context, name string, cmd []string) (string, error)
}

// Catalog abstracts the durable project record store and its
// backup-archive lifecycle.
type Catalog interface {
	Save(p *basehive.Project) error
	Get(id string) (*basehive.Project, error)
	GetBySlug(slug string) (*basehive.Project, error)
	All() ([]*basehive.Project, error)
	Delete(id string) error

	CreateBackup(p *basehive.Project) (*basehive.BackupRecord, error)
	ListBackups(projectID string) ([]*basehive.BackupRecord, error)
	RestoreBackup(projectID, filename string) error
	StorageStats() (*basehive.StorageStats, error)
}

// Vault abstracts the bootstrap credential store.
type Vault interface {
	Store(c *basehive.Credentials) error
	Get(projectID string) (*basehive.Credentials, error)
	All() ([]*basehive.Credentials, error)
	Update(projectID string, update basehive.CredentialUpdate) (*basehive.Credentials, error)
	Delete(projectID string) error
}
