package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"basehive"
)

// Backup snapshots a project's data directory. A running project is
// stopped first and the deferred restart runs on every exit path, so a
// failed backup never leaves a tenant's database needlessly offline.
func (o *Orchestrator) Backup(ctx context.Context, ref string) (rec *basehive.BackupRecord, err error) {
	p, err := o.resolve(ref)
	if err != nil {
		return nil, err
	}

	if p.Status == basehive.StatusRunning {
		if err := o.pauseForMaintenance(ctx, p); err != nil {
			return nil, err
		}
		defer func() {
			if resumeErr := o.resumeAfterMaintenance(ctx, p); resumeErr != nil {
				err = errors.Join(err, resumeErr)
			}
		}()
	}

	rec, err = o.catalog.CreateBackup(p)
	if err != nil {
		return nil, fmt.Errorf("create backup for %q: %w", p.Slug, err)
	}
	slog.Info("Backup created.", "project", p.ID, "file", rec.Filename, "bytes", rec.SizeBytes)
	return rec, nil
}

// ListBackups lists a project's archives, newest first.
func (o *Orchestrator) ListBackups(ref string) ([]*basehive.BackupRecord, error) {
	p, err := o.resolveAny(ref)
	if err != nil {
		return nil, err
	}
	return o.catalog.ListBackups(p.ID)
}

// Restore replaces a project's data directory with the named archive's
// contents, with the same stop-before/restart-after discipline as
// Backup.
func (o *Orchestrator) Restore(ctx context.Context, ref, filename string) (err error) {
	p, err := o.resolve(ref)
	if err != nil {
		return err
	}

	if p.Status == basehive.StatusRunning {
		if err := o.pauseForMaintenance(ctx, p); err != nil {
			return err
		}
		defer func() {
			if resumeErr := o.resumeAfterMaintenance(ctx, p); resumeErr != nil {
				err = errors.Join(err, resumeErr)
			}
		}()
	}

	if err := o.catalog.RestoreBackup(p.ID, filename); err != nil {
		return fmt.Errorf("restore backup for %q: %w", p.Slug, err)
	}
	slog.Info("Backup restored.", "project", p.ID, "file", filename)
	return nil
}

// pauseForMaintenance stops a running project's container and persists
// the stopped status.
func (o *Orchestrator) pauseForMaintenance(ctx context.Context, p *basehive.Project) error {
	if err := o.runtime.StopContainer(ctx, p.ContainerName); err != nil {
		return fmt.Errorf("stop %q for maintenance: %w", p.Slug, err)
	}
	p.Status = basehive.StatusStopped
	if err := o.catalog.Save(p); err != nil {
		return err
	}
	return nil
}

// resumeAfterMaintenance restarts the container stopped by
// pauseForMaintenance and persists the running status.
func (o *Orchestrator) resumeAfterMaintenance(ctx context.Context, p *basehive.Project) error {
	if err := o.runtime.StartContainer(ctx, p.ContainerName); err != nil {
		return fmt.Errorf("restart %q after maintenance: %w", p.Slug, err)
	}
	p.Status = basehive.StatusRunning
	if err := o.catalog.Save(p); err != nil {
		return err
	}
	return nil
}
