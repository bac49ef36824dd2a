package orchestrator

import (
	"context"
	"log/slog"

	"basehive"
)

// Reconcile corrects every non-deleted project's persisted status
// against the container runtime's observed state. No container found
// means error; a running container means running; anything else means
// stopped. An inspection failure counts as evidence the container is
// gone, never as a propagated error. Safe to re-run anytime; the
// daemon runs it once at startup to self-heal after host restarts and
// out-of-band container mutations.
func (o *Orchestrator) Reconcile(ctx context.Context) error {
	all, err := o.catalog.All()
	if err != nil {
		return err
	}

	corrected := 0
	for _, p := range all {
		if p.Status == basehive.StatusDeleted {
			continue
		}

		observed := o.observeStatus(ctx, p)
		if observed == p.Status {
			continue
		}

		slog.Info("Reconciling project status.",
			"project", p.ID, "slug", p.Slug, "recorded", p.Status, "observed", observed)
		p.Status = observed
		if err := o.catalog.Save(p); err != nil {
			slog.Error("Failed to persist reconciled status.", "project", p.ID, "err", err)
			continue
		}
		corrected++
	}

	if corrected > 0 {
		slog.Info("Reconciliation complete.", "corrected", corrected, "projects", len(all))
	}
	return nil
}

func (o *Orchestrator) observeStatus(ctx context.Context, p *basehive.Project) basehive.Status {
	if p.ContainerName == "" {
		return basehive.StatusError
	}
	info, err := o.runtime.ContainerInfo(ctx, p.ContainerName)
	switch {
	case err != nil, info == nil:
		return basehive.StatusError
	case info.Running:
		return basehive.StatusRunning
	default:
		return basehive.StatusStopped
	}
}
