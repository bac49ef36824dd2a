package basehive

import (
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"  Acme   Corp  ", "acme-corp"},
		{"Acme & Sons, Inc.", "acme-sons-inc"},
		{"ALLCAPS", "allcaps"},
		{"already-a-slug", "already-a-slug"},
		{"trailing---", "trailing"},
		{"---leading", "leading"},
		{"number 42", "number-42"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.name); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSlugify_CapsLength(t *testing.T) {
	got := Slugify(strings.Repeat("a", 80))
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	if err := ValidateSlug(got); err != nil {
		t.Fatalf("capped slug invalid: %v", err)
	}
}

func TestValidateSlug(t *testing.T) {
	for _, slug := range []string{"acme", "acme-corp", "a1-b2-c3", "42"} {
		if err := ValidateSlug(slug); err != nil {
			t.Errorf("ValidateSlug(%q) = %v, want nil", slug, err)
		}
	}
	for _, slug := range []string{"", "Acme", "acme_corp", "-acme", "acme-", "a--b", "acme corp", strings.Repeat("a", 51)} {
		if err := ValidateSlug(slug); !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateSlug(%q) = %v, want ErrValidation", slug, err)
		}
	}
}

func TestContainerName(t *testing.T) {
	if got := ContainerName("acme-corp"); got != "basehive-acme-corp" {
		t.Fatalf("ContainerName() = %q", got)
	}
}

func TestProjectDomain(t *testing.T) {
	if got := ProjectDomain("acme-corp", "example.com"); got != "acme-corp.example.com" {
		t.Fatalf("ProjectDomain() = %q", got)
	}
}
