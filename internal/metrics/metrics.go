package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prospector.ai/internal/sim/world"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

const namespace = "prospector"

// Metrics owns a private registry so several instances can coexist in tests.
// It implements world.Recorder.
type Metrics struct {
	reg *prometheus.Registry

	breaks       *prometheus.CounterVec
	scans        *prometheus.CounterVec
	nodesFound   *prometheus.CounterVec
	cellsVisited prometheus.Counter
	foundPerScan prometheus.Histogram
	crafts       *prometheus.CounterVec
	sessions     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		breaks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaks_total",
			Help:      "Accepted block breaks by held item family.",
		}, []string{"held"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Prospecting pick activations by tool mode and outcome.",
		}, []string{"mode", "outcome"}),
		nodesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_found_total",
			Help:      "Matching ore cells reported by scans.",
		}, []string{"resource"}),
		cellsVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_visited_total",
			Help:      "Cells examined by completed scans.",
		}),
		foundPerScan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nodes_per_scan",
			Help:      "Distribution of nodes found per completed scan.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
		crafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crafts_total",
			Help:      "Completed crafts by recipe.",
		}, []string{"recipe"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Connected websocket sessions.",
		}),
	}
	m.reg.MustRegister(
		m.breaks, m.scans, m.nodesFound, m.cellsVisited, m.foundPerScan, m.crafts, m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) SessionOpened() { m.sessions.Inc() }
func (m *Metrics) SessionClosed() { m.sessions.Dec() }

func (m *Metrics) RecordBreak(e world.BreakLogEntry) {
	family := "hand"
	if e.Held != "" {
		switch prospecting.ClassifyItem(e.Held) {
		case prospecting.FamilyPick:
			family = "pick"
		default:
			family = "other"
		}
	}
	m.breaks.WithLabelValues(family).Inc()

	rep := e.Report
	if rep == nil {
		return
	}
	outcome := "scanned"
	if !rep.Scanned {
		outcome = string(rep.Skip)
	}
	m.scans.WithLabelValues(strconv.Itoa(int(rep.Mode)), outcome).Inc()
	if rep.Scanned {
		m.nodesFound.WithLabelValues(rep.Resource).Add(float64(rep.Found))
		m.cellsVisited.Add(float64(rep.Cells))
		m.foundPerScan.Observe(float64(rep.Found))
	}
}

func (m *Metrics) RecordCraft(e world.CraftLogEntry) {
	m.crafts.WithLabelValues(e.RecipeID).Inc()
}

// QueueStats is satisfied by indexdb.SQLiteIndex.
type QueueStats interface {
	QueueDepth() int
	Dropped() uint64
}

// WatchQueue exports a queue's depth and drop count as gauges sampled on scrape.
func (m *Metrics) WatchQueue(name string, q QueueStats) {
	m.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "queue_depth",
			Help:        "Pending entries in a background writer queue.",
			ConstLabels: prometheus.Labels{"queue": name},
		}, func() float64 { return float64(q.QueueDepth()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "queue_dropped_total",
			Help:        "Entries dropped because a background writer fell behind.",
			ConstLabels: prometheus.Labels{"queue": name},
		}, func() float64 { return float64(q.Dropped()) }),
	)
}
