// Copyright 2025 The ribatlas authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package atlas

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ribatlas/ribatlas/pkg/log"
)

// Metrics exposes the pipeline counters.
type Metrics struct {
	Records      prometheus.Counter
	RIBRecords   prometheus.Counter
	Skipped      prometheus.Counter
	Prefixes     prometheus.Counter
	Regexes      prometheus.Counter
	EmptyRegexes prometheus.Counter
}

// NewMetrics registers the pipeline counters with the registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Records: f.NewCounter(prometheus.CounterOpts{
			Name: "ribatlas_mrt_records_total",
			Help: "Total number of MRT records read from the dump.",
		}),
		RIBRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "ribatlas_rib_records_total",
			Help: "Total number of TABLE_DUMP2 RIB records decoded.",
		}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "ribatlas_records_skipped_total",
			Help: "Total number of malformed records skipped.",
		}),
		Prefixes: f.NewCounter(prometheus.CounterOpts{
			Name: "ribatlas_prefixes_total",
			Help: "Total number of unique ASN-prefix associations.",
		}),
		Regexes: f.NewCounter(prometheus.CounterOpts{
			Name: "ribatlas_regexes_built_total",
			Help: "Total number of per-ASN regexes synthesized.",
		}),
		EmptyRegexes: f.NewCounter(prometheus.CounterOpts{
			Name: "ribatlas_regexes_empty_total",
			Help: "Total number of ASNs with no IPv4 decomposition tokens.",
		}),
	}
}

var (
	metricsOnce sync.Once
	runMetrics  *Metrics
)

// defaultMetrics returns the metrics registered with the default registry,
// creating them on first use. Run shares one set across invocations so the
// exporter sees cumulative counts.
func defaultMetrics() *Metrics {
	metricsOnce.Do(func() {
		runMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return runMetrics
}

// StartMetrics serves the Prometheus exporter on addr in a background
// goroutine. An empty addr disables the exporter.
func StartMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("Exporting metrics", "addr", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Metrics exporter failed", "err", err)
		}
	}()
}
