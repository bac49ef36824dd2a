package docker

import (
	"bytes"
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"basehive"
)

// Exec runs a command inside the named container and returns its
// captured stdout. A non-zero exit fails with ErrContainerOp carrying
// the stderr tail.
func (r *Runtime) Exec(ctx context.Context, name string, cmd []string) (string, error) {
	execCfg := container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	}

	resp, err := r.cli.ContainerExecCreate(ctx, name, execCfg)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", fmt.Errorf("container %q: %w", name, basehive.ErrNotFound)
		}
		return "", wrapRuntimeErr(fmt.Errorf("create exec in %q: %w", name, err))
	}

	attach, err := r.cli.ContainerExecAttach(ctx, resp.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", wrapRuntimeErr(fmt.Errorf("attach exec in %q: %w", name, err))
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return "", wrapRuntimeErr(fmt.Errorf("read exec output in %q: %w", name, err))
	}

	info, err := r.cli.ContainerExecInspect(ctx, resp.ID)
	if err != nil {
		return "", wrapRuntimeErr(fmt.Errorf("inspect exec in %q: %w", name, err))
	}
	if info.ExitCode != 0 {
		return "", fmt.Errorf("exec in %q: exit code %d: %s: %w",
			name, info.ExitCode, bytes.TrimSpace(stderr.Bytes()), basehive.ErrContainerOp)
	}

	return stdout.String(), nil
}
