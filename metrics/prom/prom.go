// Package prom exports monitor events to Prometheus.
//
// Delta events are added to a counter per (engine, metric); total events set a
// gauge per (engine, metric). Names that do not follow cache/<engine>/<window>/<metric>
// are counted as unparsed and otherwise dropped.
package prom

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/zipcache/metrics"
)

type Config struct {
	// Namespace prefixes every series. "" => "zipcache".
	Namespace string
	// Registerer receives the collectors. nil => prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

type Sink struct {
	deltas   *prometheus.CounterVec
	totals   *prometheus.GaugeVec
	unparsed prometheus.Counter
}

var _ metrics.Sink = (*Sink)(nil)

// New registers the collectors. Registering twice against the same registerer
// reuses the collectors already there, so several caches can share one Sink
// configuration.
func New(cfg Config) (*Sink, error) {
	ns := cfg.Namespace
	if ns == "" {
		ns = "zipcache"
	}
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	deltas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "events_total",
		Help:      "Sum of per-poll deltas reported by the cache monitor.",
	}, []string{"engine", "metric"})
	totals := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "value",
		Help:      "Cumulative value at the last cache monitor poll.",
	}, []string{"engine", "metric"})
	unparsed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "unparsed_events_total",
		Help:      "Events whose name was not a cache metric name.",
	})

	var err error
	s := &Sink{}
	if s.deltas, err = register(reg, deltas); err != nil {
		return nil, err
	}
	if s.totals, err = register(reg, totals); err != nil {
		return nil, err
	}
	if s.unparsed, err = register(reg, unparsed); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}

func (s *Sink) Emit(name string, value int64) {
	engine, window, metric, ok := metrics.Parse(name)
	if !ok {
		s.unparsed.Inc()
		return
	}
	switch window {
	case metrics.WindowDelta:
		if value > 0 {
			s.deltas.WithLabelValues(engine, metric).Add(float64(value))
		}
	case metrics.WindowTotal:
		s.totals.WithLabelValues(engine, metric).Set(float64(value))
	default:
		s.unparsed.Inc()
	}
}
