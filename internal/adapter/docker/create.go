package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"

	"basehive"
)

// projectDirs are created under <projectsRoot>/<projectID>/ and bind
// mounted into the container at the matching /pb_* paths.
var projectDirs = []struct {
	host   string
	target string
}{
	{"data", "/pb_data"},
	{"public", "/pb_public"},
	{"migrations", "/pb_migrations"},
	{"hooks", "/pb_hooks"},
}

// CreateContainer provisions the per-project host directories, reserves
// a host port, and creates (but does not start) the project container
// with resource limits and edge-proxy discovery labels.
func (r *Runtime) CreateContainer(ctx context.Context, project *basehive.Project, imageRef string) (basehive.ContainerBinding, error) {
	memory, err := parseMemoryLimit(project.Config.MemoryLimit)
	if err != nil {
		return basehive.ContainerBinding{}, err
	}
	nanoCPUs, err := parseCPULimit(project.Config.CPULimit)
	if err != nil {
		return basehive.ContainerBinding{}, err
	}

	projectRoot := filepath.Join(r.opts.ProjectsRoot, project.ID)
	mounts := make([]mount.Mount, 0, len(projectDirs))
	for _, d := range projectDirs {
		hostPath := filepath.Join(projectRoot, d.host)
		if err := os.MkdirAll(hostPath, 0o755); err != nil {
			return basehive.ContainerBinding{}, fmt.Errorf("create project directory %q: %w", hostPath, err)
		}
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: hostPath,
			Target: d.target,
		})
	}

	port, err := r.ReservePort(ctx)
	if err != nil {
		return basehive.ContainerBinding{}, err
	}

	name := basehive.ContainerName(project.Slug)
	exposed := nat.Port(fmt.Sprintf("%d/tcp", containerPort))

	cc := &container.Config{
		Image:        imageRef,
		Labels:       containerLabels(project.ID, project.Slug, r.opts.BaseDomain),
		ExposedPorts: nat.PortSet{exposed: struct{}{}},
	}
	hc := &container.HostConfig{
		Mounts: mounts,
		PortBindings: nat.PortMap{
			exposed: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(port)}},
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		NetworkMode:   container.NetworkMode(r.opts.Network),
		Resources: container.Resources{
			Memory:   memory,
			NanoCPUs: nanoCPUs,
		},
	}

	resp, err := r.cli.ContainerCreate(ctx, cc, hc, nil, nil, name)
	if err != nil {
		return basehive.ContainerBinding{}, wrapRuntimeErr(fmt.Errorf("create container %q: %w", name, err))
	}
	return basehive.ContainerBinding{ID: resp.ID, Name: name, Port: port}, nil
}
