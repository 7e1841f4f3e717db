package video

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Build a CLI in Go", "build-a-cli-in-go-0488"},
		{"How to Build a REST API in Go", "how-to-build-a-rest-api-in-go-1fe5"},
		{"Go Concurrency Patterns!!!", "go-concurrency-patterns-0c99"},
		{"My Tutorial! (Part 1)", "my-tutorial-part-1-e2a5"},
		{"data  science 101", "data-science-101-5579"},
		{"Déjà Vu — Go Generics", "d-j-vu-go-generics-ee16"},
		// Nothing alphanumeric survives: fall back to "video".
		{"   ", "video-6286"},
		{"!!!", "video-6dd0"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugify_DistinctForSameBase(t *testing.T) {
	a := Slugify("Go Tips")
	b := Slugify("go tips")
	if a == b {
		t.Errorf("titles differing only in case collided: %q", a)
	}
	if a[:len(a)-5] != b[:len(b)-5] {
		t.Errorf("expected same base, got %q and %q", a, b)
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	if Slugify("Some Title") != Slugify("Some Title") {
		t.Error("Slugify is not deterministic")
	}
}

func TestValidSlug(t *testing.T) {
	valid := []string{
		Slugify("Build a CLI in Go"),
		Slugify("!!!"),
		"x-0000",
		"my-tutorial-part-1-abcd",
	}
	for _, s := range valid {
		if !ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"noslug",
		"UPPER-case-abcd",
		"has space-abcd",
		"../../etc/passwd",
		"slug-123g",           // suffix not hex
		"slug-12345",          // suffix too long
		"video-abcd/manifest", // path separator
	}
	for _, s := range invalid {
		if ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = true, want false", s)
		}
	}
}
