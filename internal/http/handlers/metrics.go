package handlers

import (
	"bytes"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

var (
	eventsIngestedTotal *prometheus.CounterVec
	ingestErrorsTotal   *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	eventsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventlistener",
			Name:      "events_ingested_total",
			Help:      "Total number of webhook events accepted and stored.",
		},
		[]string{"topic"},
	)
	ingestErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventlistener",
			Name:      "ingest_errors_total",
			Help:      "Total number of ingestion requests that failed.",
		},
		[]string{"kind"},
	)
	prometheus.MustRegister(eventsIngestedTotal, ingestErrorsTotal)
}

// RequestLogger returns fasthttp middleware that logs method, path, status, duration.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}

// MetricsHandler exposes the Prometheus text format. An optional "topic"
// query parameter narrows labeled families to one topic's series.
func MetricsHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		topic := string(ctx.QueryArgs().Peek("topic"))

		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to gather metrics")
			return
		}

		if topic != "" {
			metricFamilies = filterByTopic(metricFamilies, topic)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

// filterByTopic keeps unlabeled families as-is; families carrying a
// "topic" label are reduced to the series matching the requested topic.
func filterByTopic(metricFamilies []*dto.MetricFamily, topic string) []*dto.MetricFamily {
	filtered := make([]*dto.MetricFamily, 0, len(metricFamilies))
	for _, mf := range metricFamilies {
		hasTopicLabel := false
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "topic" {
					hasTopicLabel = true
					break
				}
			}
			if hasTopicLabel {
				break
			}
		}

		if !hasTopicLabel {
			filtered = append(filtered, mf)
			continue
		}

		var kept []*dto.Metric
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "topic" && l.GetValue() == topic {
					kept = append(kept, m)
					break
				}
			}
		}

		if len(kept) == 0 {
			continue
		}

		filtered = append(filtered, &dto.MetricFamily{
			Name:   mf.Name,
			Help:   mf.Help,
			Type:   mf.Type,
			Metric: kept,
		})
	}
	return filtered
}
