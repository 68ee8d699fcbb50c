package models

import (
	"strings"
	"time"
)

// RecipeLink represents a saved recipe bookmark
type RecipeLink struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category pairs a category key with its display glyph
type Category struct {
	Key   string `json:"key"`
	Emoji string `json:"emoji"`
}

// Categories is the fixed, closed set of content categories. It is defined
// at process start and never changes at runtime; a category value anywhere
// in the system is valid only if it is a member of this set.
var Categories = []Category{
	{Key: "ごはん・丼", Emoji: "🍚"},
	{Key: "パスタ", Emoji: "🍝"},
	{Key: "麺", Emoji: "🍜"},
	{Key: "パン", Emoji: "🍞"},
	{Key: "お肉", Emoji: "🍖"},
	{Key: "お魚", Emoji: "🐟"},
	{Key: "卵・豆", Emoji: "🥚"},
	{Key: "おかず", Emoji: "🥗"},
	{Key: "サラダ", Emoji: "🥬"},
	{Key: "スープ", Emoji: "🍲"},
	{Key: "朝ごはん", Emoji: "🌅"},
	{Key: "お弁当", Emoji: "🍱"},
	{Key: "作り置き", Emoji: "🧊"},
	{Key: "おつまみ", Emoji: "🍺"},
	{Key: "スイーツ", Emoji: "🍰"},
	{Key: "おやつ", Emoji: "🍪"},
	{Key: "鍋", Emoji: "🫕"},
	{Key: "ドリンク", Emoji: "☕"},
	{Key: "その他", Emoji: "✨"},
}

const (
	// DefaultCategory is used when classification finds no signal
	DefaultCategory = "おかず"

	// OtherCategory absorbs any category value outside the fixed set
	OtherCategory = "その他"
)

var categoryKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c.Key] = struct{}{}
	}
	return m
}()

// IsCategory reports whether key is a member of the fixed category set
func IsCategory(key string) bool {
	_, ok := categoryKeys[key]
	return ok
}

// NormalizeCategory collapses an arbitrary category string into the fixed
// set: whitespace (including ideographic spaces) is trimmed, known keys pass
// through, everything else becomes OtherCategory.
func NormalizeCategory(cat string) string {
	cat = strings.TrimSpace(strings.ReplaceAll(cat, "　", " "))
	if IsCategory(cat) {
		return cat
	}
	return OtherCategory
}

// MetaSuggestion is the enrichment result returned to the UI layer.
// Title is null when extraction found nothing usable; Category is always a
// member of the fixed set.
type MetaSuggestion struct {
	Title    *string `json:"title"`
	Category string  `json:"category"`
}

// Thumbnail records a cached og:image blob for an image URL
type Thumbnail struct {
	URL         string    `json:"url"`
	FilePath    string    `json:"file_path"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveLinkRequest is the body for creating or upserting a bookmark
type SaveLinkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// UpdateLinkRequest is the body for editing a bookmark
type UpdateLinkRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}
