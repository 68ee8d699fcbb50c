// Package recipon implements the URL metadata enrichment pipeline behind the
// bookmark service: given a user-supplied recipe page URL it resolves a
// cleaned dish title, a representative image and a category suggestion.
//
// The pipeline is fail-soft end to end. Unsafe targets, network failures,
// unparseable markup and absent metadata all collapse to an absent result;
// nothing here returns an error to its caller. Failure modes are only kept
// apart internally, for the Prometheus counters in metrics.go.
package recipon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html"

	"github.com/Shugo117/recipon/models"
)

// Config contains enrichment pipeline configuration
type Config struct {
	FetchTimeout  time.Duration // Hard deadline for a single page fetch
	TitleMaxBytes int64         // Body byte ceiling for title lookups
	ImageMaxBytes int64         // Body byte ceiling for image lookups
	ThumbMaxBytes int64         // Byte ceiling for thumbnail image downloads
	ThumbTimeout  time.Duration // Deadline for a thumbnail image download
	CacheSize     int           // Capacity of each lookup cache
	UserAgent     string
}

// DefaultConfig returns default enrichment configuration
func DefaultConfig() Config {
	return Config{
		FetchTimeout:  3 * time.Second,
		TitleMaxBytes: 240_000,
		ImageMaxBytes: 220_000,
		ThumbMaxBytes: 5 * 1024 * 1024,
		ThumbTimeout:  10 * time.Second,
		CacheSize:     512,
		UserAgent:     "Mozilla/5.0 (compatible; Recipon/1.0)",
	}
}

// Enricher resolves metadata suggestions for user-supplied URLs. The two
// lookup caches are the only shared mutable state; everything else is
// read-only after construction, so an Enricher is safe for concurrent use.
type Enricher struct {
	config     Config
	httpClient *http.Client
	validate   func(ctx context.Context, rawURL string) bool
	titleCache *memoCache
	imageCache *memoCache
}

// New creates a new Enricher instance
func New(config Config) *Enricher {
	return &Enricher{
		config: config,
		httpClient: &http.Client{
			// Deadlines come from per-request contexts; the transport is
			// wrapped for trace propagation
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: func(ctx context.Context, rawURL string) bool {
			return isSafePublicURL(ctx, rawURL, defaultLookup)
		},
		titleCache: newMemoCache("title", config.CacheSize),
		imageCache: newMemoCache("image", config.CacheSize),
	}
}

// Enrich resolves a metadata suggestion for a page URL. It never fails: any
// extraction problem yields a null title, and the category is always derived
// by classifying whatever title text is available (empty when none).
func (e *Enricher) Enrich(ctx context.Context, pageURL string) models.MetaSuggestion {
	title, ok := e.LookupTitle(ctx, pageURL)

	var titlePtr *string
	text := ""
	if ok {
		titlePtr = &title
		text = title
	}

	return models.MetaSuggestion{
		Title:    titlePtr,
		Category: ClassifyTitle(text),
	}
}

// LookupTitle returns the cleaned dish title for a page URL, fetching and
// extracting on first use and answering from the title cache afterwards.
func (e *Enricher) LookupTitle(ctx context.Context, pageURL string) (string, bool) {
	return e.titleCache.memoize(pageURL, func() (string, bool) {
		title, err := e.titleLookup(ctx, pageURL)
		if err != nil {
			lookupOutcomes.WithLabelValues("title", outcomeFor(err)).Inc()
			return "", false
		}
		lookupOutcomes.WithLabelValues("title", outcomeOK).Inc()
		return title, true
	})
}

// LookupImage returns the absolute URL of the page's representative image,
// cached independently of title lookups.
func (e *Enricher) LookupImage(ctx context.Context, pageURL string) (string, bool) {
	return e.imageCache.memoize(pageURL, func() (string, bool) {
		img, err := e.imageLookup(ctx, pageURL)
		if err != nil {
			lookupOutcomes.WithLabelValues("image", outcomeFor(err)).Inc()
			return "", false
		}
		lookupOutcomes.WithLabelValues("image", outcomeOK).Inc()
		return img, true
	})
}

func (e *Enricher) titleLookup(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if !e.validate(ctx, pageURL) {
		return "", errUnsafeTarget
	}

	body, err := e.fetchHTML(ctx, pageURL, e.config.TitleMaxBytes)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", errParse
	}

	// Structured data wins over meta tags
	raw, ok := extractRecipeName(doc)
	if !ok {
		raw, ok = extractMetaTitle(doc)
	}
	if !ok {
		return "", errNoMatch
	}

	title, ok := CleanTitle(raw)
	if !ok {
		return "", errNoMatch
	}
	return title, nil
}

func (e *Enricher) imageLookup(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if !e.validate(ctx, pageURL) {
		return "", errUnsafeTarget
	}

	body, err := e.fetchHTML(ctx, pageURL, e.config.ImageMaxBytes)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", errParse
	}

	img, ok := extractMetaImage(doc)
	if !ok {
		return "", errNoMatch
	}

	resolved, err := resolveImageURL(pageURL, img)
	if err != nil {
		return "", errNoMatch
	}
	return resolved, nil
}

// fetchHTML performs the bounded page fetch: deadline of FetchTimeout for
// the whole request, body discarded unless the declared content type
// contains text/html, at most maxBytes of the body read, invalid UTF-8
// dropped rather than failing.
func (e *Enricher) fetchHTML(ctx context.Context, pageURL string, maxBytes int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errFetch
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", errFetch
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errFetch
	}

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ctype, "text/html") {
		return "", errNonHTML
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		// A deadline mid-body still leaves usable head bytes, but matching
		// the fetch contract the whole response is discarded
		return "", errFetch
	}

	return strings.ToValidUTF8(string(raw), ""), nil
}

// FetchImage downloads an image for thumbnail caching under its own bounds:
// the same safety validation as page fetches, ThumbTimeout deadline, image/*
// content type and a hard ThumbMaxBytes size cap.
func (e *Enricher) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	if !e.validate(ctx, imageURL) {
		return nil, "", errUnsafeTarget
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.ThumbTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", errFetch
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", errFetch
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errFetch
	}

	ctype := strings.ToLower(strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0]))
	if !strings.HasPrefix(ctype, "image/") {
		return nil, "", errNonHTML
	}

	if resp.ContentLength > e.config.ThumbMaxBytes {
		return nil, "", fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.config.ThumbMaxBytes+1))
	if err != nil {
		return nil, "", errFetch
	}
	if int64(len(data)) > e.config.ThumbMaxBytes {
		return nil, "", fmt.Errorf("image too large: exceeds %d bytes", e.config.ThumbMaxBytes)
	}

	return data, ctype, nil
}

// resolveImageURL resolves a possibly-relative image reference against the
// page it came from and requires the result to be absolute http(s).
func resolveImageURL(pageURL, img string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(img)
	if err != nil {
		return "", err
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("non-http image url: %s", resolved.Scheme)
	}
	return resolved.String(), nil
}
