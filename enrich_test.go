package recipon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// newTestEnricher returns an Enricher whose safety check accepts everything,
// so lookups can reach httptest servers on loopback.
func newTestEnricher(config Config) *Enricher {
	e := New(config)
	e.validate = func(ctx context.Context, rawURL string) bool { return true }
	return e
}

func TestEnrichStructuredDataWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head>
<meta property="og:title" content="から揚げレシピ | Foo Blog" />
<script type="application/ld+json">{"@type":"Recipe","name":"鶏の唐揚げ"}</script>
</head><body></body></html>`))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	got := e.Enrich(context.Background(), server.URL)

	if got.Title == nil {
		t.Fatal("expected a title")
	}
	if *got.Title != "鶏の唐揚げ" {
		t.Errorf("title = %q, want 鶏の唐揚げ", *got.Title)
	}
	if got.Category != "お肉" {
		t.Errorf("category = %q, want お肉", got.Category)
	}
}

func TestEnrichMetaFallbackAndCleaning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
<title>カルボナーラの作り方 | クックパッド</title>
</head><body></body></html>`))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	got := e.Enrich(context.Background(), server.URL)

	if got.Title == nil {
		t.Fatal("expected a title")
	}
	if *got.Title != "カルボナーラ" {
		t.Errorf("title = %q, want カルボナーラ", *got.Title)
	}
	if got.Category != "パスタ" {
		t.Errorf("category = %q, want パスタ", got.Category)
	}
}

func TestEnrichAbsentTitleStillClassifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head></head><body><p>本文のみ</p></body></html>`))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	got := e.Enrich(context.Background(), server.URL)

	if got.Title != nil {
		t.Errorf("title = %q, want nil", *got.Title)
	}
	if got.Category != "おかず" {
		t.Errorf("category = %q, want default おかず", got.Category)
	}
}

func TestLookupTitleCachesAcrossCalls(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>肉じゃが</title></head></html>`))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	for range 5 {
		if title, ok := e.LookupTitle(context.Background(), server.URL); !ok || title != "肉じゃが" {
			t.Fatalf("LookupTitle = (%q, %v)", title, ok)
		}
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("server fetched %d times, want 1", n)
	}
}

func TestLookupTitleCachesFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	for range 3 {
		if _, ok := e.LookupTitle(context.Background(), server.URL); ok {
			t.Fatal("expected lookup failure")
		}
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("failing URL fetched %d times, want 1", n)
	}
}

func TestLookupTitleRejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 <html><head><title>紛らわしい</title></head></html>"))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	if title, ok := e.LookupTitle(context.Background(), server.URL); ok {
		t.Errorf("non-HTML response produced title %q", title)
	}
}

func TestLookupTitleBodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		// Pad past the read ceiling before the title appears
		w.Write([]byte("<html><head><!--" + strings.Repeat("x", 250_000) + "--><title>遅すぎる題</title></head></html>"))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	if title, ok := e.LookupTitle(context.Background(), server.URL); ok {
		t.Errorf("title %q extracted past the byte ceiling", title)
	}
}

func TestLookupTitleUnsafeTargetNotFetched(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>内部ページ</title></head></html>`))
	}))
	defer server.Close()

	// Default validator in place: the loopback server address must be
	// rejected before any connection is made.
	e := New(DefaultConfig())
	if _, ok := e.LookupTitle(context.Background(), server.URL); ok {
		t.Error("loopback URL should be rejected")
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("unsafe target was fetched %d times", n)
	}
}

func TestLookupImageResolvesRelative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
<meta property="og:image" content="/images/dish.png" />
</head></html>`))
	}))
	defer server.Close()

	e := newTestEnricher(DefaultConfig())
	img, ok := e.LookupImage(context.Background(), server.URL+"/recipes/42")
	if !ok {
		t.Fatal("expected an image URL")
	}
	if want := server.URL + "/images/dish.png"; img != want {
		t.Errorf("image = %q, want %q", img, want)
	}
}

func TestFetchImage(t *testing.T) {
	// 1x1 transparent PNG
	png := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dish.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		case "/big.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(make([]byte, 2048))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		}
	}))
	defer server.Close()

	config := DefaultConfig()
	config.ThumbMaxBytes = 1024
	e := newTestEnricher(config)

	t.Run("valid image", func(t *testing.T) {
		data, ctype, err := e.FetchImage(context.Background(), server.URL+"/dish.png")
		if err != nil {
			t.Fatalf("FetchImage: %v", err)
		}
		if ctype != "image/png" {
			t.Errorf("content type = %q, want image/png", ctype)
		}
		if w, h := ImageDims(data); w != 1 || h != 1 {
			t.Errorf("dims = %dx%d, want 1x1", w, h)
		}
	})

	t.Run("oversized image rejected", func(t *testing.T) {
		if _, _, err := e.FetchImage(context.Background(), server.URL+"/big.png"); err == nil {
			t.Error("expected size cap error")
		}
	})

	t.Run("non-image content rejected", func(t *testing.T) {
		if _, _, err := e.FetchImage(context.Background(), server.URL+"/page.html"); err == nil {
			t.Error("expected content type error")
		}
	})
}

func TestEnricherTransportIsInstrumented(t *testing.T) {
	e := New(DefaultConfig())
	if _, ok := e.httpClient.Transport.(*otelhttp.Transport); !ok {
		t.Errorf("transport is %T, want *otelhttp.Transport", e.httpClient.Transport)
	}
}
