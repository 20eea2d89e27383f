package catalog

import (
	"testing"

	"github.com/kapu/fitplan-engine-go/internal/domain"
	"go.uber.org/zap"
)

func TestNormalizePicksTargetLanguage(t *testing.T) {
	n := NewNormalizer(2, zap.NewNop())

	entry, ok := n.Normalize(record(42, "barbell SQUAT"))
	if !ok {
		t.Fatalf("expected record to normalize")
	}

	if entry.ID != "42" {
		t.Errorf("unexpected id %q", entry.ID)
	}
	if entry.Name != "Barbell Squat" {
		t.Errorf("expected title-cased name, got %q", entry.Name)
	}
	if entry.Description != "<p>Keep your back straight.</p>" {
		t.Errorf("unexpected description %q", entry.Description)
	}
	if entry.DescriptionText != "Keep your back straight." {
		t.Errorf("unexpected description text %q", entry.DescriptionText)
	}
	if entry.Category != "Legs" {
		t.Errorf("unexpected category %q", entry.Category)
	}
	if len(entry.PrimaryMuscles) != 1 || entry.PrimaryMuscles[0] != "Quads" {
		t.Errorf("expected name_en for primary muscles, got %v", entry.PrimaryMuscles)
	}
	if len(entry.SecondaryMuscles) != 1 || entry.SecondaryMuscles[0] != "Gluteus maximus" {
		t.Errorf("expected fallback to name for secondary muscles, got %v", entry.SecondaryMuscles)
	}
	if len(entry.Equipment) != 1 || entry.Equipment[0] != "Barbell" {
		t.Errorf("unexpected equipment %v", entry.Equipment)
	}
	if len(entry.Images) != 1 || !entry.Images[0].IsMain || entry.Images[0].ID != 5 {
		t.Errorf("unexpected images %+v", entry.Images)
	}
	if len(entry.Videos) != 0 {
		t.Errorf("expected no videos, got %+v", entry.Videos)
	}
}

func TestNormalizeDropsRecordsWithoutUsableTranslation(t *testing.T) {
	n := NewNormalizer(2, zap.NewNop())

	cases := map[string]string{
		"no english":     `{"id": 1, "translations": [{"language": 1, "name": "Kniebeuge"}]}`,
		"blank name":     `{"id": 2, "translations": [{"language": 2, "name": "   "}]}`,
		"no translation": `{"id": 3}`,
		"not an object":  `[1, 2, 3]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, ok := n.Normalize(domain.RawRecord(raw)); ok {
				t.Fatalf("expected record to be dropped")
			}
		})
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	n := NewNormalizer(2, zap.NewNop())

	raw := `{
		"id": "abc",
		"translations": [{"language": "2", "name": "plank", "description": ""}],
		"category": 7,
		"muscles": null
	}`
	entry, ok := n.Normalize(domain.RawRecord(raw))
	if !ok {
		t.Fatalf("expected record to normalize")
	}

	if entry.ID != "abc" {
		t.Errorf("unexpected id %q", entry.ID)
	}
	if entry.Description != "No description available" {
		t.Errorf("expected default description, got %q", entry.Description)
	}
	if entry.DescriptionText != "" {
		t.Errorf("expected empty description text, got %q", entry.DescriptionText)
	}
	if entry.Category != "Unknown" {
		t.Errorf("expected default category, got %q", entry.Category)
	}
	if entry.PrimaryMuscles == nil || len(entry.PrimaryMuscles) != 0 {
		t.Errorf("expected empty muscle list, got %v", entry.PrimaryMuscles)
	}
}

func TestHTMLToText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Stand tall.</p><p>Squat down.</p>", "Stand tall. Squat down."},
		{"<ul><li>One</li><li>Two</li></ul>", "One Two"},
		{"Line one<br>line two", "Line one line two"},
		{"plain   text", "plain text"},
	}

	for _, tc := range cases {
		if got := htmlToText(tc.in); got != tc.want {
			t.Errorf("htmlToText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
