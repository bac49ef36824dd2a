// Package docker translates orchestration intent into Docker Engine
// operations: network and image availability, container lifecycle,
// host-port bookkeeping, and resource-usage queries.
package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	dockerfilters "github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"

	"basehive"
)

// Options configure a Runtime.
type Options struct {
	// ProjectsRoot is the host directory under which per-project data
	// directories are created.
	ProjectsRoot string
	// BaseDomain is used for edge-proxy routing labels.
	BaseDomain string
	// Network is the isolated bridge network joined by every managed
	// container.
	Network string
	// BasePort is the lowest host port handed out to projects.
	BasePort int
}

// Runtime wraps a Docker client with basehive's port and directory
// bookkeeping. Not safe for multiple orchestrator processes sharing one
// Docker daemon: the port reservation set lives in this process.
type Runtime struct {
	cli  client.APIClient
	opts Options

	ports *portSet
}

// NewRuntime creates a Runtime with a new Docker client from the
// environment and seeds the port reservation set from containers
// carrying the management label.
func NewRuntime(ctx context.Context, opts Options) (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return NewRuntimeFromClient(ctx, cli, opts)
}

// NewRuntimeFromClient wraps an existing Docker client. Tests pass a
// fake APIClient here.
func NewRuntimeFromClient(ctx context.Context, cli client.APIClient, opts Options) (*Runtime, error) {
	r := &Runtime{cli: cli, opts: opts, ports: newPortSet(opts.BasePort)}
	if err := r.seedPorts(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// seedPorts scans all managed containers and records their published
// host ports so restarts never double-allocate.
func (r *Runtime) seedPorts(ctx context.Context) error {
	containers, err := r.listManaged(ctx)
	if err != nil {
		return fmt.Errorf("seed port set: %w", err)
	}
	for _, c := range containers {
		for _, p := range c.Ports {
			if p.PublicPort > 0 {
				r.ports.Mark(int(p.PublicPort))
			}
		}
	}
	return nil
}

// ReservePort hands out the lowest unused host port at or above the
// base port. Reservations are never recycled within a process lifetime.
func (r *Runtime) ReservePort(ctx context.Context) (int, error) {
	return r.ports.Reserve(), nil
}

// EnsureNetwork creates the managed bridge network if it does not
// already exist. Idempotent.
func (r *Runtime) EnsureNetwork(ctx context.Context) error {
	_, err := r.cli.NetworkInspect(ctx, r.opts.Network, network.InspectOptions{})
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return wrapRuntimeErr(fmt.Errorf("inspect network %q: %w", r.opts.Network, err))
	}

	_, err = r.cli.NetworkCreate(ctx, r.opts.Network, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{labelManaged: "true"},
	})
	if err != nil {
		return wrapRuntimeErr(fmt.Errorf("create network %q: %w", r.opts.Network, err))
	}
	slog.Info("Created managed network.", "network", r.opts.Network)
	return nil
}

// PullImage ensures the image is present locally, draining the pull
// stream to completion.
func (r *Runtime) PullImage(ctx context.Context, ref string) error {
	pull, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		if client.IsErrConnectionFailed(err) {
			return fmt.Errorf("pull image %q: %w: %w", ref, basehive.ErrRuntimeUnavailable, err)
		}
		return fmt.Errorf("pull image %q: %w: %w", ref, basehive.ErrContainerOp, err)
	}
	_, _ = io.Copy(io.Discard, pull)
	_ = pull.Close()
	return nil
}

// StartContainer starts the named container.
func (r *Runtime) StartContainer(ctx context.Context, name string) error {
	if err := r.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return wrapRuntimeErr(fmt.Errorf("start container %q: %w", name, err))
	}
	return nil
}

// StopContainer stops the named container.
func (r *Runtime) StopContainer(ctx context.Context, name string) error {
	if err := r.cli.ContainerStop(ctx, name, container.StopOptions{}); err != nil {
		return wrapRuntimeErr(fmt.Errorf("stop container %q: %w", name, err))
	}
	return nil
}

// RestartContainer restarts the named container.
func (r *Runtime) RestartContainer(ctx context.Context, name string) error {
	if err := r.cli.ContainerRestart(ctx, name, container.StopOptions{}); err != nil {
		return wrapRuntimeErr(fmt.Errorf("restart container %q: %w", name, err))
	}
	return nil
}

// RemoveContainer best-effort stops the container (ignoring stop
// failures), then force-removes it including anonymous volumes.
// NotFound is not an error.
func (r *Runtime) RemoveContainer(ctx context.Context, name string) error {
	if err := r.cli.ContainerStop(ctx, name, container.StopOptions{}); err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("Stop before remove failed.", "container", name, "err", err)
	}
	err := r.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil && !errdefs.IsNotFound(err) {
		return wrapRuntimeErr(fmt.Errorf("remove container %q: %w", name, err))
	}
	return nil
}

// ContainerInfo returns the live state of the named container, or nil
// when it does not exist. Point-in-time memory and CPU usage are filled
// in for running containers; a stats failure degrades to zeros.
func (r *Runtime) ContainerInfo(ctx context.Context, name string) (*basehive.ContainerInfo, error) {
	inspect, err := r.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapRuntimeErr(fmt.Errorf("inspect container %q: %w", name, err))
	}

	info := &basehive.ContainerInfo{
		ID:   inspect.ID,
		Name: strings.TrimPrefix(inspect.Name, "/"),
	}
	if inspect.State != nil {
		info.Status = inspect.State.Status
		info.Running = inspect.State.Running
		info.StartedAt = parseDockerTime(inspect.State.StartedAt)
	}
	info.CreatedAt = parseDockerTime(inspect.Created)
	if inspect.NetworkSettings != nil {
		for _, bindings := range inspect.NetworkSettings.Ports {
			for _, b := range bindings {
				if port := parsePortNumber(b.HostPort); port > 0 {
					info.HostPorts = append(info.HostPorts, port)
				}
			}
		}
	}

	if info.Running {
		mem, cpu, err := r.containerUsage(ctx, name)
		if err != nil {
			slog.Debug("Container stats unavailable.", "container", name, "err", err)
		} else {
			info.MemoryBytes = mem
			info.CPUPercent = cpu
		}
	}
	return info, nil
}

// containerUsage takes a one-shot stats sample.
func (r *Runtime) containerUsage(ctx context.Context, name string) (uint64, float64, error) {
	resp, err := r.cli.ContainerStatsOneShot(ctx, name)
	if err != nil {
		return 0, 0, fmt.Errorf("container stats %q: %w", name, err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return 0, 0, fmt.Errorf("decode container stats %q: %w", name, err)
	}

	mem := stats.MemoryStats.Usage
	var cpu float64
	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage) - float64(stats.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(stats.CPUStats.SystemUsage) - float64(stats.PreCPUStats.SystemUsage)
	if cpuDelta > 0 && sysDelta > 0 {
		cpus := float64(stats.CPUStats.OnlineCPUs)
		if cpus == 0 {
			cpus = float64(len(stats.CPUStats.CPUUsage.PercpuUsage))
		}
		cpu = cpuDelta / sysDelta * cpus * 100.0
	}
	return mem, cpu, nil
}

// ContainerLogs returns the last tail lines of combined stdout/stderr.
func (r *Runtime) ContainerLogs(ctx context.Context, name string, tail int) (string, error) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       fmt.Sprintf("%d", tail),
	}
	rc, err := r.cli.ContainerLogs(ctx, name, opts)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", fmt.Errorf("container %q: %w", name, basehive.ErrNotFound)
		}
		return "", wrapRuntimeErr(fmt.Errorf("container logs %q: %w", name, err))
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(bytes.TrimSpace(deframe(data))), nil
}

// deframe strips docker stream framing (8-byte header per chunk).
func deframe(data []byte) []byte {
	var clean []byte
	for len(data) >= 8 {
		size := int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7])
		data = data[8:]
		if size > len(data) {
			size = len(data)
		}
		clean = append(clean, data[:size]...)
		data = data[size:]
	}
	return clean
}

// ListManaged returns summaries of every container carrying the
// management label, running or not.
func (r *Runtime) ListManaged(ctx context.Context) ([]basehive.ContainerInfo, error) {
	containers, err := r.listManaged(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]basehive.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		info := basehive.ContainerInfo{
			ID:        c.ID,
			Name:      name,
			Status:    c.Status,
			Running:   c.State == container.StateRunning,
			CreatedAt: time.Unix(c.Created, 0).UTC(),
		}
		for _, p := range c.Ports {
			if p.PublicPort > 0 {
				info.HostPorts = append(info.HostPorts, int(p.PublicPort))
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func (r *Runtime) listManaged(ctx context.Context) ([]container.Summary, error) {
	f := dockerfilters.NewArgs(dockerfilters.Arg("label", labelManaged+"=true"))
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return nil, wrapRuntimeErr(fmt.Errorf("list managed containers: %w", err))
	}
	return containers, nil
}

// Close releases the underlying Docker client.
func (r *Runtime) Close() error {
	return r.cli.Close()
}

// wrapRuntimeErr classifies a Docker error as unreachable-daemon or a
// failed container operation.
func wrapRuntimeErr(err error) error {
	if client.IsErrConnectionFailed(err) {
		return fmt.Errorf("%w: %w", basehive.ErrRuntimeUnavailable, err)
	}
	return fmt.Errorf("%w: %w", basehive.ErrContainerOp, err)
}

func parseDockerTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parsePortNumber(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
