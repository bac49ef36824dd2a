package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"

	"github.com/sethvargo/go-retry"

	"basehive"
)

// bootstrap polls the freshly started container until it accepts an
// admin-create command, then stores the credentials in the vault. The
// service needs a short, variable warm-up before it accepts commands,
// so the loop retries on a fixed delay up to the configured attempt
// budget. Failure is logged with enough detail for manual remediation
// and never propagated: the database instance is usable without
// provisioned credentials.
func (o *Orchestrator) bootstrap(ctx context.Context, project *basehive.Project) {
	email := "admin@" + project.Domain
	password := generatePassword()

	backoff := retry.WithMaxRetries(uint64(o.opts.BootstrapAttempts-1), retry.NewConstant(o.opts.BootstrapDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := o.runtime.Exec(ctx, project.ContainerName, []string{
			"pocketbase", "superuser", "upsert", email, password,
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("Admin bootstrap failed; provision credentials manually.",
			"project", project.ID,
			"slug", project.Slug,
			"container", project.ContainerName,
			"attempts", o.opts.BootstrapAttempts,
			"err", err)
		return
	}

	creds := &basehive.Credentials{
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		Slug:          project.Slug,
		Domain:        project.Domain,
		AdminEmail:    email,
		AdminPassword: password,
	}
	if err := o.vault.Store(creds); err != nil {
		slog.Error("Failed to store bootstrap credentials.",
			"project", project.ID, "email", email, "err", err)
		return
	}
	slog.Info("Admin bootstrap complete.", "project", project.ID, "email", email)
}

// generatePassword returns a 24-character random admin password.
func generatePassword() string {
	var buf [18]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:])
}
