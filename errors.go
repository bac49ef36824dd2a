package basehive

import "errors"

// Sentinel errors shared across the control plane. Callers classify
// failures with errors.Is; producers wrap them with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrValidation indicates bad caller input (illegal slug, empty name).
	ErrValidation = errors.New("basehive: invalid input")

	// ErrConflict indicates a uniqueness violation, e.g. a duplicate slug.
	ErrConflict = errors.New("basehive: conflict")

	// ErrNotFound indicates an unknown project, backup, or credential.
	ErrNotFound = errors.New("basehive: not found")

	// ErrRuntimeUnavailable indicates the container runtime cannot be reached.
	ErrRuntimeUnavailable = errors.New("basehive: container runtime unavailable")

	// ErrContainerOp indicates a container create/start/stop/exec failure.
	ErrContainerOp = errors.New("basehive: container operation failed")

	// ErrBootstrap indicates the in-container admin bootstrap never
	// succeeded. Logged only; never fails project creation.
	ErrBootstrap = errors.New("basehive: bootstrap failed")

	// ErrCatalogCorrupt indicates the catalog file exists but cannot be read.
	ErrCatalogCorrupt = errors.New("basehive: catalog corrupt")
)
