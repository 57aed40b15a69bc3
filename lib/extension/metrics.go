// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts extension-point activity. A nil *Metrics records
// nothing.
type Metrics struct {
	invocations    *prometheus.CounterVec
	retries        *prometheus.CounterVec
	cacheFallbacks *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nightjar",
			Subsystem: "extension_point",
			Name:      "invocations_total",
			Help:      "Extension-point process runs, by source, action and exit code.",
		}, []string{"source", "action", "exit_code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nightjar",
			Subsystem: "extension_point",
			Name:      "retries_total",
			Help:      "Extension-point runs that asked to be retried.",
		}, []string{"source", "action"}),
		cacheFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nightjar",
			Subsystem: "document_cache",
			Name:      "fallbacks_total",
			Help:      "Fetches answered from the local cache because the extension point failed or wrote an invalid update.",
		}, []string{"document"}),
	}
	for _, collector := range []prometheus.Collector{m.invocations, m.retries, m.cacheFallbacks} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeInvocation(source, action string, code ExitCode) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(source, action, strconv.Itoa(int(code))).Inc()
	if code == Retry {
		m.retries.WithLabelValues(source, action).Inc()
	}
}

func (m *Metrics) observeFallback(name string) {
	if m == nil {
		return
	}
	m.cacheFallbacks.WithLabelValues(name).Inc()
}
