// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

const opLabel = "op"

var (
	_ Metrics = (*metrics)(nil)
	_ Metrics = noop{}

	// Noop discards every observation.
	Noop Metrics = noop{}
)

type Metrics interface {
	// MarkOp records the outcome and duration of one engine operation.
	MarkOp(op string, duration time.Duration, err error)
	SetHonorSupply(supply *uint256.Int)
	SetTotalVirtualStaked(total *uint256.Int)
	AddGerasEmitted(amount *uint256.Int)
}

type metrics struct {
	ops                *prometheus.CounterVec
	opFailures         *prometheus.CounterVec
	opDuration         *prometheus.HistogramVec
	honorSupply        prometheus.Gauge
	gerasEmitted       prometheus.Counter
	totalVirtualStaked prometheus.Gauge
}

func New(namespace string, registerer prometheus.Registerer) (Metrics, error) {
	m := &metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "number of engine operations attempted",
		}, []string{opLabel}),
		opFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "op_failures_total",
			Help:      "number of engine operations that were rolled back",
		}, []string{opLabel}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "time spent executing engine operations",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{opLabel}),
		honorSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "supply",
			Help:      "total Honor supply in base units",
		}),
		gerasEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geras_emitted_total",
			Help:      "Geras emitted into reward flows in base units",
		}),
		totalVirtualStaked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_virtual_staked",
			Help:      "virtual units of the external asset currently staked",
		}),
	}
	err := errors.Join(
		registerer.Register(m.ops),
		registerer.Register(m.opFailures),
		registerer.Register(m.opDuration),
		registerer.Register(m.honorSupply),
		registerer.Register(m.gerasEmitted),
		registerer.Register(m.totalVirtualStaked),
	)
	return m, err
}

func (m *metrics) MarkOp(op string, duration time.Duration, err error) {
	m.ops.WithLabelValues(op).Inc()
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.opFailures.WithLabelValues(op).Inc()
	}
}

func (m *metrics) SetHonorSupply(supply *uint256.Int) {
	m.honorSupply.Set(toFloat(supply))
}

func (m *metrics) SetTotalVirtualStaked(total *uint256.Int) {
	m.totalVirtualStaked.Set(toFloat(total))
}

func (m *metrics) AddGerasEmitted(amount *uint256.Int) {
	m.gerasEmitted.Add(toFloat(amount))
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}

type noop struct{}

func (noop) MarkOp(string, time.Duration, error) {}

func (noop) SetHonorSupply(*uint256.Int) {}

func (noop) SetTotalVirtualStaked(*uint256.Int) {}

func (noop) AddGerasEmitted(*uint256.Int) {}
