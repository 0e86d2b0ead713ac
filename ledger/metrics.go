// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	calls        *prometheus.CounterVec
	callDuration prometheus.Histogram
	events       prometheus.Counter
	contracts    prometheus.Gauge
}

func newLedgerMetrics(promRegistry prometheus.Registerer) *ledgerMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &ledgerMetrics{
		calls: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "endaoment_ledger_calls_total",
				Help: "total contract calls by method and result",
			},
			[]string{"method", "result"},
		),
		callDuration: promautoFactory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "endaoment_ledger_call_duration_seconds",
				Help:    "contract call execution time",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		events: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "endaoment_ledger_events_total",
			Help: "total events committed",
		}),
		contracts: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "endaoment_ledger_contracts",
			Help: "current count of deployed contracts",
		}),
	}
}
