package models

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "known key passes through", input: "パスタ", expected: "パスタ"},
		{name: "default category passes through", input: "おかず", expected: "おかず"},
		{name: "surrounding whitespace trimmed", input: "  お肉  ", expected: "お肉"},
		{name: "ideographic whitespace trimmed", input: "　スイーツ　", expected: "スイーツ"},
		{name: "unknown value becomes other", input: "イタリアン", expected: OtherCategory},
		{name: "empty value becomes other", input: "", expected: OtherCategory},
		{name: "emoji is not a key", input: "🍝", expected: OtherCategory},
		{name: "other category passes through", input: "その他", expected: OtherCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCategory(tt.input); got != tt.expected {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsCategory(t *testing.T) {
	for _, c := range Categories {
		if !IsCategory(c.Key) {
			t.Errorf("IsCategory(%q) = false for declared category", c.Key)
		}
	}
	if IsCategory("未知") {
		t.Error("IsCategory should reject unknown keys")
	}
}

func TestCategorySetMembers(t *testing.T) {
	if !IsCategory(DefaultCategory) {
		t.Errorf("default category %q must be in the fixed set", DefaultCategory)
	}
	if !IsCategory(OtherCategory) {
		t.Errorf("other category %q must be in the fixed set", OtherCategory)
	}

	seen := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		if seen[c.Key] {
			t.Errorf("duplicate category key %q", c.Key)
		}
		seen[c.Key] = true
		if c.Emoji == "" {
			t.Errorf("category %q has no emoji", c.Key)
		}
	}
}
