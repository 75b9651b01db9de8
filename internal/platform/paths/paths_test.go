package paths

import (
	"path/filepath"
	"testing"
)

func TestResolverLayout(t *testing.T) {
	r := NewResolver("/data")

	if got := r.StagingDir("Demo Project", "r1"); got != filepath.Join("/data", "projects", "Demo_Project", "releases", "r1", "staging") {
		t.Fatalf("staging dir = %s", got)
	}
	if got := r.ExportDir("Demo Project", "r1"); got != filepath.Join("/data", "projects", "Demo_Project", "releases", "r1", "export") {
		t.Fatalf("export dir = %s", got)
	}
	if got := r.ArtifactPath("Demo Project", "Spring Release", "coco"); got != filepath.Join("/data", "projects", "Demo_Project", "releases", "Spring_Release_coco.zip") {
		t.Fatalf("artifact path = %s", got)
	}
}

func TestStagedNameIncludesDataset(t *testing.T) {
	if got := StagedName("Field Survey", "img001.jpg"); got != "Field_Survey_img001.jpg" {
		t.Fatalf("staged name = %s", got)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Demo Project":    "Demo_Project",
		"  padded  name ": "padded_name",
		"already_clean":   "already_clean",
		"tabs\tand\nruns": "tabs_and_runs",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
