// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
	"time"
)

var m metrics

type metrics struct {
	goroutines        *expvar.Int
	requests          *expvar.Int
	errors            *expvar.Int
	panics            *expvar.Int
	cacheHits         *expvar.Int
	modelFileLoadTime *avgMetric
	rankTime          *avgMetric
	scoreTime         *avgMetric
	rankRequests      *usage
}

func init() {
	m = metrics{
		goroutines:        expvar.NewInt("service_goroutines"),
		requests:          expvar.NewInt("service_requests"),
		errors:            expvar.NewInt("service_errors"),
		panics:            expvar.NewInt("service_panics"),
		cacheHits:         expvar.NewInt("service_cache_hits"),
		modelFileLoadTime: newAvgMetric("model_load"),
		rankTime:          newAvgMetric("model_rank"),
		scoreTime:         newAvgMetric("model_score"),
		rankRequests:      newUsage("usage_rank"),
	}
}

// AddGoroutines refreshes the goroutine metric.
func AddGoroutines() int64 {
	g := int64(runtime.NumGoroutine())
	m.goroutines.Set(g)
	return g
}

// AddRequests increments the request metric by 1.
func AddRequests() int64 {
	m.requests.Add(1)
	return m.requests.Value()
}

// AddErrors increments the errors metric by 1.
func AddErrors() int64 {
	m.errors.Add(1)
	return m.errors.Value()
}

// AddPanics increments the panics metric by 1.
func AddPanics() int64 {
	m.panics.Add(1)
	return m.panics.Value()
}

// AddCacheHits increments the cache hits metric by the specified amount.
func AddCacheHits(hits int) {
	m.cacheHits.Add(int64(hits))
}

// AddModelFileLoadTime captures the specified duration for loading a model file.
func AddModelFileLoadTime(duration time.Duration) {
	m.modelFileLoadTime.add(duration.Seconds())
}

// AddRankTime captures the specified duration for a full rank request.
func AddRankTime(duration time.Duration) {
	m.rankTime.add(duration.Seconds())
}

// AddScoreTime captures the specified duration for scoring a single pair.
func AddScoreTime(duration time.Duration) {
	m.scoreTime.add(duration.Seconds())
}

// AddRankUsage captures the documents and tokens processed by a rank request.
func AddRankUsage(documents int, tokens int) {
	m.rankRequests.add(documents, tokens)
}
