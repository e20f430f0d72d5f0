// Package router wires the word-cloud service routes and applies the
// middleware chain (RequestID → Metrics → CORS → RateLimit → Timeout).
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/handler"
	wcmw "github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/middleware"
)

// Deps are the router's collaborators. Analytics, Limiter and Metrics are
// optional. Proxies lists the peers whose X-Forwarded-For keys the limiter.
type Deps struct {
	Handler   *handler.Handler
	Analytics *analytics.Handler
	Health    *health.Checker
	Limiter   *ratelimit.Limiter
	Proxies   wcmw.TrustedProxies
	Metrics   *metrics.Metrics
	CORS      wcmw.CORSConfig
	Timeout   time.Duration
}

// New builds the service handler.
//
// Route table:
//
//	POST /api/word-cloud              → frequencies for a paragraph
//	POST /api/word-count              → occurrences of one word
//	POST /api/analyze                 → full analysis view
//	POST /api/export                  → summary CSV attachment
//	GET  /api/v1/analytics            → aggregated request analytics
//	GET  /api/v1/analytics/history    → persisted snapshots
//	GET  /api/v1/cache/stats          → cache hit/miss counters
//	POST /api/v1/cache/invalidate     → drop cached results
//	GET  /health/live, /health/ready  → probes
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", d.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Health.ReadyHandler())

	mux.HandleFunc("POST /api/word-cloud", d.Handler.WordCloud)
	mux.HandleFunc("POST /api/word-count", d.Handler.WordCount)
	mux.HandleFunc("POST /api/analyze", d.Handler.Analyze)
	mux.HandleFunc("POST /api/export", d.Handler.Export)

	if d.Analytics != nil {
		mux.HandleFunc("GET /api/v1/analytics", d.Analytics.Stats)
		mux.HandleFunc("GET /api/v1/analytics/history", d.Analytics.History)
	}

	mux.HandleFunc("GET /api/v1/cache/stats", d.Handler.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", d.Handler.CacheInvalidate)

	// request → RequestID → Metrics → CORS → RateLimit → Timeout → mux
	var chain http.Handler = mux
	chain = pkgmw.Timeout(d.Timeout)(chain)
	if d.Limiter != nil {
		chain = wcmw.RateLimit(d.Limiter, d.Proxies, d.Metrics)(chain)
	}
	chain = wcmw.CORS(d.CORS)(chain)
	if d.Metrics != nil {
		chain = pkgmw.Metrics(d.Metrics)(chain)
	}
	chain = pkgmw.RequestID(chain)

	return chain
}
