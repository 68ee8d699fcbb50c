package recipon

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Accepted rune-length range for a cleaned dish title
const (
	minTitleRunes = 2
	maxTitleRunes = 60
)

var (
	// Whitespace runs, including ideographic space
	wsRun = regexp.MustCompile(`[\s　]+`)

	// Site-name separators: the left side of the first one is the dish name
	siteSep = regexp.MustCompile(`\s*(?:[｜|]|[-–—]|:|：|／|/)\s*`)

	// Trailing attribution and bracketed annotations
	tailAnnotation = regexp.MustCompile(`\s*(?:[bB]y\s+\S+|【[^】]{1,40}】|\([^)]{1,40}\)|（[^）]{1,40}）)\s*$`)

	// Marker words, anchored: a trailing marker absorbs a preceding の,
	// a leading one absorbs a following colon
	recipeSuffix = regexp.MustCompile(`の?レシピ$`)
	recipePrefix = regexp.MustCompile(`^レシピ[:：]?\s*`)
	howToSuffix  = regexp.MustCompile(`の?作り方$`)
	howToPrefix  = regexp.MustCompile(`^作り方[:：]?\s*`)

	honorificSuffix = regexp.MustCompile(`\s+(?:さん|ちゃん|くん|氏)$`)
)

// Boilerplate terms stripped only as a prefix or suffix, in this order
var noiseWords = []string{
	"レシピ", "作り方", "簡単", "人気", "おすすめ", "献立", "材料", "手順", "動画",
	"プロの", "定番", "料理", "キッチン",
}

const edgePunct = " -–—|｜:：/／"

// cleanStep is one pure transform in the title normalization pipeline.
// Steps run in slice order; each is independently testable.
type cleanStep struct {
	name string
	fn   func(string) string
}

var cleanSteps = []cleanStep{
	{name: "collapse_whitespace", fn: collapseWhitespace},
	{name: "cut_site_suffix", fn: cutSiteSuffix},
	{name: "strip_tail_annotations", fn: stripTailAnnotations},
	{name: "strip_marker_words", fn: stripMarkerWords},
	{name: "strip_noise_words", fn: stripNoiseWords},
	{name: "strip_honorific", fn: stripHonorific},
	{name: "trim_edge_punct", fn: trimEdgePunct},
}

// CleanTitle normalizes a raw extracted page title into a presentable dish
// name. Transforms run in a fixed order and only ever remove affixes, so
// cleaning an already-clean title is a no-op. The result is accepted only if
// its rune length lands in [2, 60].
func CleanTitle(raw string) (string, bool) {
	s := raw
	for _, step := range cleanSteps {
		s = step.fn(s)
		if s == "" {
			return "", false
		}
	}

	if n := utf8.RuneCountInString(s); n < minTitleRunes || n > maxTitleRunes {
		return "", false
	}
	return s, true
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRun.ReplaceAllString(norm.NFC.String(s), " "))
}

func cutSiteSuffix(s string) string {
	if loc := siteSep.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

func stripTailAnnotations(s string) string {
	for range 2 {
		ns := strings.TrimSpace(tailAnnotation.ReplaceAllString(s, ""))
		if ns == s {
			break
		}
		s = ns
	}
	return s
}

func stripMarkerWords(s string) string {
	s = strings.TrimSpace(recipeSuffix.ReplaceAllString(s, ""))
	s = strings.TrimSpace(recipePrefix.ReplaceAllString(s, ""))
	s = strings.TrimSpace(howToSuffix.ReplaceAllString(s, ""))
	s = strings.TrimSpace(howToPrefix.ReplaceAllString(s, ""))
	return s
}

// stripNoiseWords removes each noise word at most once as a prefix and once
// as a suffix, never mid-string, in list order.
func stripNoiseWords(s string) string {
	for _, w := range noiseWords {
		if strings.HasPrefix(s, w) {
			s = strings.TrimSpace(strings.TrimPrefix(s, w))
		}
		if strings.HasSuffix(s, w) {
			s = strings.TrimSpace(strings.TrimSuffix(s, w))
		}
	}
	return s
}

func stripHonorific(s string) string {
	return strings.TrimSpace(honorificSuffix.ReplaceAllString(s, ""))
}

func trimEdgePunct(s string) string {
	return strings.TrimSpace(strings.Trim(s, edgePunct))
}
