package docker

import (
	"fmt"
	"strconv"
	"strings"

	units "github.com/docker/go-units"

	"basehive"
)

// parseMemoryLimit converts a docker-style memory string ("256m",
// "1g") to bytes. Empty means unlimited (0).
func parseMemoryLimit(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	bytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("memory limit %q: %w", s, basehive.ErrValidation)
	}
	return bytes, nil
}

// parseCPULimit converts a fractional CPU count ("0.5", "2") to
// docker NanoCPUs. Empty means unlimited (0).
func parseCPULimit(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	cpus, err := strconv.ParseFloat(s, 64)
	if err != nil || cpus < 0 {
		return 0, fmt.Errorf("cpu limit %q: %w", s, basehive.ErrValidation)
	}
	return int64(cpus * 1e9), nil
}
