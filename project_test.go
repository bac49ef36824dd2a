package basehive

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusCreating, StatusRunning, StatusStopped, StatusError, StatusDeleted} {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false", s)
		}
	}
	if Status("paused").Valid() {
		t.Error(`Status("paused").Valid() = true`)
	}
}

func TestProjectConfigMerge(t *testing.T) {
	base := ProjectConfig{
		MemoryLimit: "256m",
		CPULimit:    "0.5",
		Features:    map[string]bool{"hooks": true},
	}

	got := base.Merge(ProjectConfig{MemoryLimit: "1g", AutoBackup: true, Features: map[string]bool{"migrations": true}})
	if got.MemoryLimit != "1g" {
		t.Errorf("MemoryLimit = %q", got.MemoryLimit)
	}
	if got.CPULimit != "0.5" {
		t.Errorf("CPULimit = %q, base value should survive", got.CPULimit)
	}
	if !got.AutoBackup {
		t.Error("AutoBackup not applied")
	}
	if !got.Features["hooks"] || !got.Features["migrations"] {
		t.Errorf("Features = %v, want union", got.Features)
	}

	// Empty override leaves the base untouched.
	if got := base.Merge(ProjectConfig{}); got.MemoryLimit != "256m" || got.CPULimit != "0.5" {
		t.Errorf("empty merge changed base: %+v", got)
	}
}

func TestProjectClone(t *testing.T) {
	p := &Project{ID: "p1", Config: ProjectConfig{Features: map[string]bool{"hooks": true}}}
	c := p.Clone()
	c.Config.Features["hooks"] = false
	if !p.Config.Features["hooks"] {
		t.Error("Clone() shares the features map")
	}
}
