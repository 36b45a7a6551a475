// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attesta-net/attesta/log"
)

const namespace = "attesta_metrics"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics creates a new instance of the Prometheus service and
// sets the implementation as the default metrics services
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	counters    sync.Map
	counterVecs sync.Map
	gauges      sync.Map
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	mapItem, ok := o.counters.Load(name)
	if !ok {
		meter := o.newCountMeter(name)
		o.counters.Store(name, meter)
		return meter
	}
	return mapItem.(CountMeter)
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	mapItem, ok := o.counterVecs.Load(name)
	if !ok {
		meter := o.newCountVecMeter(name, labels)
		o.counterVecs.Store(name, meter)
		return meter
	}
	return mapItem.(CountVecMeter)
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	mapItem, ok := o.gauges.Load(name)
	if !ok {
		meter := o.newGaugeMeter(name)
		o.gauges.Store(name, meter)
		return meter
	}
	return mapItem.(GaugeMeter)
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func (o *prometheusMetrics) newCountMeter(name string) CountMeter {
	meter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	})
	if err := prometheus.Register(meter); err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
	}
	return &promCountMeter{meter}
}

func (o *prometheusMetrics) newCountVecMeter(name string, labels []string) CountVecMeter {
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	}, labels)
	if err := prometheus.Register(meter); err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
	}
	return &promCountVecMeter{meter}
}

func (o *prometheusMetrics) newGaugeMeter(name string) GaugeMeter {
	meter := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
	})
	if err := prometheus.Register(meter); err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
	}
	return &promGaugeMeter{meter}
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(v int64) {
	c.counter.Add(float64(v))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(v int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(v))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (g *promGaugeMeter) Add(v int64) {
	g.gauge.Add(float64(v))
}

func (g *promGaugeMeter) Set(v int64) {
	g.gauge.Set(float64(v))
}
