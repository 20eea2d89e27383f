package util

import "testing"

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"barbell Bench press", "Barbell Bench Press"},
		{"EZ-BAR curl", "Ez-bar Curl"},
		{"squat", "Squat"},
		{"", ""},
		{"double  space", "Double  Space"},
		{"überzug am kabel", "Überzug Am Kabel"},
	}

	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCaseAfterTrim(t *testing.T) {
	raw := "barbell Bench press "
	if got := TitleCase(Normalize(raw)); got != "Barbell Bench Press" {
		t.Fatalf("unexpected title case: %q", got)
	}
}

func TestNameKey(t *testing.T) {
	if NameKey("  Barbell   Bench Press ") != NameKey("barbell bench press") {
		t.Fatalf("expected whitespace and case to be ignored")
	}
	if NameKey("Bench Press") == NameKey("Bench-Press") {
		t.Fatalf("punctuation must stay significant")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
