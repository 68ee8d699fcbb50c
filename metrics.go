package recipon

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Internal error taxonomy. None of these surface to callers: every lookup
// collapses to an absent result, and these exist only so the counters below
// can tell failure modes apart.
var (
	errUnsafeTarget = errors.New("unsafe target")
	errFetch        = errors.New("fetch failed")
	errNonHTML      = errors.New("non-html content")
	errParse        = errors.New("parse failure")
	errNoMatch      = errors.New("no match")
)

const (
	outcomeOK           = "ok"
	outcomeUnsafeTarget = "unsafe_target"
	outcomeFetchError   = "fetch_error"
	outcomeNonHTML      = "non_html"
	outcomeParseFailure = "parse_failure"
	outcomeNoMatch      = "no_match"
)

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, errUnsafeTarget):
		return outcomeUnsafeTarget
	case errors.Is(err, errNonHTML):
		return outcomeNonHTML
	case errors.Is(err, errParse):
		return outcomeParseFailure
	case errors.Is(err, errNoMatch):
		return outcomeNoMatch
	default:
		return outcomeFetchError
	}
}

var (
	lookupOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipon_lookup_outcomes_total",
		Help: "Enrichment lookup results by kind (title, image) and outcome.",
	}, []string{"kind", "outcome"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipon_lookup_cache_total",
		Help: "Cache hits and misses per lookup cache.",
	}, []string{"cache", "result"})

	jsonldParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipon_jsonld_parse_errors_total",
		Help: "Malformed JSON-LD blocks skipped during extraction.",
	})
)
