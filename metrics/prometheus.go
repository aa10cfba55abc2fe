package metrics

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-leads/core"
)

// PrometheusRecorder exposes pipeline counters and histograms through a
// dedicated registry. Metric and label names arrive in dotted form and are
// normalized to the prometheus charset; the label set seen on the first
// observation of a metric becomes that metric's fixed schema, with absent
// labels reported as empty strings afterwards.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*counterFamily
	histograms map[string]*histogramFamily
}

type counterFamily struct {
	vec  *prometheus.CounterVec
	keys []string
}

type histogramFamily struct {
	vec  *prometheus.HistogramVec
	keys []string
}

func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		registry:   prometheus.NewRegistry(),
		counters:   map[string]*counterFamily{},
		histograms: map[string]*histogramFamily{},
	}
}

func (r *PrometheusRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value <= 0 {
		return
	}
	metricName := normalizeMetricName(name)
	if metricName == "" {
		return
	}

	r.mu.Lock()
	family, ok := r.counters[metricName]
	if !ok {
		keys := normalizedTagKeys(tags)
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricName,
			Help: "Counter recorded by the lead ingestion pipeline.",
		}, keys)
		if err := r.registry.Register(vec); err != nil {
			r.mu.Unlock()
			return
		}
		family = &counterFamily{vec: vec, keys: keys}
		r.counters[metricName] = family
	}
	labels := labelValues(family.keys, tags)
	r.mu.Unlock()

	family.vec.With(labels).Add(float64(value))
}

func (r *PrometheusRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	metricName := normalizeMetricName(name)
	if metricName == "" {
		return
	}

	r.mu.Lock()
	family, ok := r.histograms[metricName]
	if !ok {
		keys := normalizedTagKeys(tags)
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricName,
			Help:    "Histogram recorded by the lead ingestion pipeline.",
			Buckets: prometheus.DefBuckets,
		}, keys)
		if err := r.registry.Register(vec); err != nil {
			r.mu.Unlock()
			return
		}
		family = &histogramFamily{vec: vec, keys: keys}
		r.histograms[metricName] = family
	}
	labels := labelValues(family.keys, tags)
	r.mu.Unlock()

	family.vec.With(labels).Observe(value)
}

// Handler serves the recorder's registry in the prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	if r == nil || r.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the backing registry for callers that register their own
// collectors next to the pipeline metrics.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func normalizeMetricName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ""
	}
	var builder strings.Builder
	builder.Grow(len(name))
	for index, char := range name {
		switch {
		case char >= 'a' && char <= 'z':
			builder.WriteRune(char)
		case char >= '0' && char <= '9':
			if index == 0 {
				builder.WriteByte('_')
			}
			builder.WriteRune(char)
		default:
			builder.WriteByte('_')
		}
	}
	return builder.String()
}

func normalizedTagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for key := range tags {
		normalized := normalizeMetricName(key)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		keys = append(keys, normalized)
	}
	sort.Strings(keys)
	return keys
}

func labelValues(keys []string, tags map[string]string) prometheus.Labels {
	labels := make(prometheus.Labels, len(keys))
	for _, key := range keys {
		labels[key] = ""
	}
	for key, value := range tags {
		normalized := normalizeMetricName(key)
		if _, ok := labels[normalized]; ok {
			labels[normalized] = value
		}
	}
	return labels
}

var _ core.MetricsRecorder = (*PrometheusRecorder)(nil)
