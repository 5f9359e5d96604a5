// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package pallets

import (
	"context"
	"time"

	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/log"
	"github.com/rcrowley/go-metrics"
)

// Metrics meters what the runtime does with gas and extrinsics. Components accept a nil
// *Metrics, in which case nothing is recorded.
type Metrics struct {
	registry metrics.Registry

	GasBurned   metrics.Meter
	GasRefueled metrics.Meter

	PaymentsReserved metrics.Meter
	PaymentsRejected metrics.Meter
	PaymentsSettled  metrics.Meter
	GasRefunded      metrics.Meter

	ExtrinsicsApplied metrics.Meter
	ExtrinsicsFailed  metrics.Meter
	PoolSize          metrics.Gauge

	DispatchLatency metrics.Timer
}

// NewMetrics registers a fresh set of metrics and logs them every conf.GetMetricsInterval()
// until ctx is cancelled.
func NewMetrics(ctx context.Context) *Metrics {
	registry := metrics.NewRegistry()

	m := &Metrics{
		registry: registry,

		GasBurned:   metrics.NewRegisteredMeter("gas.burned", registry),
		GasRefueled: metrics.NewRegisteredMeter("gas.refueled", registry),

		PaymentsReserved: metrics.NewRegisteredMeter("payment.reserved", registry),
		PaymentsRejected: metrics.NewRegisteredMeter("payment.rejected", registry),
		PaymentsSettled:  metrics.NewRegisteredMeter("payment.settled", registry),
		GasRefunded:      metrics.NewRegisteredMeter("payment.refunded", registry),

		ExtrinsicsApplied: metrics.NewRegisteredMeter("extrinsic.applied", registry),
		ExtrinsicsFailed:  metrics.NewRegisteredMeter("extrinsic.failed", registry),
		PoolSize:          metrics.NewRegisteredGauge("pool.size", registry),

		DispatchLatency: metrics.NewRegisteredTimer("dispatch.latency", registry),
	}

	go func() {
		logger := log.Metrics()

		for {
			select {
			case <-time.After(conf.GetMetricsInterval()):
				logger.Info().
					Int64("gas.burned", m.GasBurned.Count()).
					Int64("gas.refueled", m.GasRefueled.Count()).
					Int64("payment.reserved", m.PaymentsReserved.Count()).
					Int64("payment.rejected", m.PaymentsRejected.Count()).
					Int64("payment.settled", m.PaymentsSettled.Count()).
					Int64("payment.refunded", m.GasRefunded.Count()).
					Int64("extrinsic.applied", m.ExtrinsicsApplied.Count()).
					Int64("extrinsic.failed", m.ExtrinsicsFailed.Count()).
					Int64("pool.size", m.PoolSize.Value()).
					Float64("gps.burned", m.GasBurned.Rate1()).
					Float64("eps.applied", m.ExtrinsicsApplied.Rate1()).
					Str("dispatch.latency.max.ms", time.Duration(m.DispatchLatency.Max()).String()).
					Str("dispatch.latency.min.ms", time.Duration(m.DispatchLatency.Min()).String()).
					Str("dispatch.latency.mean.ms", time.Duration(m.DispatchLatency.Mean()).String()).
					Msg("Updated metrics.")
			case <-ctx.Done():
				return
			}
		}
	}()

	return m
}

// Each iterates over every registered metric by name.
func (m *Metrics) Each(fn func(name string, metric interface{})) {
	m.registry.Each(fn)
}

func (m *Metrics) Stop() {
	m.GasBurned.Stop()
	m.GasRefueled.Stop()

	m.PaymentsReserved.Stop()
	m.PaymentsRejected.Stop()
	m.PaymentsSettled.Stop()
	m.GasRefunded.Stop()

	m.ExtrinsicsApplied.Stop()
	m.ExtrinsicsFailed.Stop()

	m.DispatchLatency.Stop()
}
