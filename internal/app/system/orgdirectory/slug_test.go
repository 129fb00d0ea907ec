package orgdirectory

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme", "acme"},
		{"Acme Corp", "acme-corp"},
		{"  Acme   Corp  ", "acme-corp"},
		{"Acme, Inc.", "acme-inc"},
		{"acme-corp", "acme-corp"},
		{"ACME 2000", "acme-2000"},
		{"---Acme---", "acme"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.name); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestCandidateSlug(t *testing.T) {
	if got := candidateSlug("acme", 1); got != "acme" {
		t.Errorf("first candidate = %q, want %q", got, "acme")
	}
	if got := candidateSlug("acme", 2); got != "acme-2" {
		t.Errorf("second candidate = %q, want %q", got, "acme-2")
	}
	if got := candidateSlug("acme", 50); got != "acme-50" {
		t.Errorf("50th candidate = %q, want %q", got, "acme-50")
	}
}
