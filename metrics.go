package folio

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors for one App. Each App has its own
// registry so several can coexist in a process.
type Metrics struct {
	Registry      *prometheus.Registry
	Articles      prometheus.Gauge
	Pages         prometheus.Gauge
	Skipped       prometheus.Gauge
	Subscriptions *prometheus.CounterVec
	BuildSeconds  prometheus.Histogram
}

// NewMetrics creates and registers the folio collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Articles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "articles",
			Help:      "Articles in the last load.",
		}),
		Pages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "pages",
			Help:      "Standalone pages in the last load.",
		}),
		Skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "articles_skipped",
			Help:      "Content files dropped by validation in the last load.",
		}),
		Subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "newsletter_signups_total",
			Help:      "Newsletter sign-up attempts by result.",
		}, []string{"result"}),
		BuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "folio",
			Name:      "build_duration_seconds",
			Help:      "Duration of static builds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Articles, m.Pages, m.Skipped, m.Subscriptions, m.BuildSeconds,
	)
	return m
}

func (m *Metrics) observeLoad(res LoadResult, pages int) {
	m.Articles.Set(float64(len(res.Articles)))
	m.Skipped.Set(float64(len(res.Skipped)))
	m.Pages.Set(float64(pages))
}

func (m *Metrics) middleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "folio_http",
		Registerer:                m.Registry,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

func (m *Metrics) handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: m.Registry})
}
