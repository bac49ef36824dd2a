// Package daemon wires the catalog, the credential vault, the container
// runtime, and the HTTP API into one long-running process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"

	systemd "github.com/coreos/go-systemd/daemon"
	"golang.org/x/sync/errgroup"

	"basehive/api"
	"basehive/config"
	"basehive/internal/adapter/docker"
	"basehive/internal/catalog"
	"basehive/internal/orchestrator"
	"basehive/internal/vault"
)

// Run starts the daemon and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Daemon) error {
	cat, err := catalog.Open(cfg.DataRoot, cfg.BackupRoot)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	v, err := vault.Open(cfg.DataRoot)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	runtime, err := docker.NewRuntime(ctx, docker.Options{
		ProjectsRoot: cat.ProjectsRoot(),
		BaseDomain:   cfg.BaseDomain,
		Network:      cfg.Network,
		BasePort:     cfg.BasePort,
	})
	if err != nil {
		return fmt.Errorf("connect container runtime: %w", err)
	}

	orch := orchestrator.New(runtime, cat, v, orchestrator.Options{
		Image:             cfg.Image,
		BaseDomain:        cfg.BaseDomain,
		Defaults:          cfg.Defaults,
		BootstrapAttempts: cfg.BootstrapAttempts,
		BootstrapDelay:    cfg.BootstrapDelay.Std(),
	})

	// Boot-time housekeeping. Neither is fatal: the runtime may still
	// be coming up and every operation re-checks its own preconditions.
	if err := runtime.EnsureNetwork(ctx); err != nil {
		slog.Warn("Network setup failed at boot.", "err", err)
	}
	if err := orch.Reconcile(ctx); err != nil {
		slog.Warn("Startup reconciliation failed.", "err", err)
	}
	if managed, err := runtime.ListManaged(ctx); err == nil {
		slog.Info("Runtime attached.", "managedContainers", len(managed))
	}

	srv := api.NewServer(orch, cfg.AuthSecret)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Serving API.", "addr", cfg.Listen)
		if _, err := systemd.SdNotify(false, systemd.SdNotifyReady); err != nil {
			slog.Error("Failed to notify systemd that the daemon is ready.", "err", err)
		}
		return srv.ListenAndServe(ctx, cfg.Listen)
	})
	return g.Wait()
}
