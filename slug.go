package basehive

import (
	"fmt"
	"regexp"
	"strings"
)

const maxSlugLen = 50

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify derives a URL-safe slug from a display name: lowercase, runs
// of non-alphanumeric characters collapsed to a single hyphen, trimmed,
// capped at 50 characters.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	return slug
}

// ValidateSlug checks that a caller-supplied slug is usable.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("empty slug: %w", ErrValidation)
	}
	if len(slug) > maxSlugLen {
		return fmt.Errorf("slug %q exceeds %d characters: %w", slug, maxSlugLen, ErrValidation)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q must be lowercase alphanumeric with single hyphens: %w", slug, ErrValidation)
	}
	return nil
}

// ContainerName is the deterministic container name for a slug. Slug
// uniqueness implies container-name uniqueness.
func ContainerName(slug string) string {
	return "basehive-" + slug
}

// ProjectDomain is the externally reachable host for a slug under the
// configured base domain.
func ProjectDomain(slug, baseDomain string) string {
	return slug + "." + baseDomain
}
