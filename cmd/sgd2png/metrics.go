// SPDX-License-Identifier: MIT

package main

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// metrics tracks per-run counters the way the teacher's builders track
// tile/row throughput; there is no HTTP /metrics endpoint here (this
// is a one-shot CLI, not a server), so the registry is dumped to the
// log once at exit instead of scraped.
type metrics struct {
	registry    *prometheus.Registry
	filesTotal  prometheus.Counter
	setsTotal   prometheus.Counter
	tilesTotal  prometheus.Counter
	bytesTotal  prometheus.Counter
	errorsTotal *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		filesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sgd2png_files_processed_total",
			Help: "Number of SGD input files processed.",
		}),
		setsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sgd2png_sets_rendered_total",
			Help: "Number of named SETs rendered to a PNG.",
		}),
		tilesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sgd2png_tiles_decoded_total",
			Help: "Number of MRCI raster tiles decoded.",
		}),
		bytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sgd2png_input_bytes_total",
			Help: "Total bytes of (decompressed) SGD input read.",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgd2png_errors_total",
			Help: "Number of files that failed to decode, by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.filesTotal, m.setsTotal, m.tilesTotal, m.bytesTotal, m.errorsTotal)
	return m
}

func (m *metrics) recordError(err error) {
	m.errorsTotal.WithLabelValues(errKind(err).String()).Inc()
}

// dump writes every collected metric family to logger in Prometheus's
// own text exposition format, a local stand-in for the promhttp
// endpoint a long-running service would expose instead.
func (m *metrics) dump(logger *log.Logger) {
	families, err := m.registry.Gather()
	if err != nil {
		logger.Printf("gathering metrics: %v", err)
		return
	}
	for _, f := range families {
		if _, err := expfmt.MetricFamilyToText(logWriterDiscard{logger}, f); err != nil {
			logger.Printf("formatting metric %s: %v", f.GetName(), err)
		}
	}
}

// logWriterDiscard adapts *log.Logger to io.Writer so
// expfmt.MetricFamilyToText can stream directly into the log file
// instead of building an intermediate buffer.
type logWriterDiscard struct{ logger *log.Logger }

func (w logWriterDiscard) Write(p []byte) (int, error) {
	w.logger.Print(string(p))
	return len(p), nil
}
