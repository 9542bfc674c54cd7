package random

import "github.com/prometheus/client_golang/prometheus"

const (
	refillResultOK    = "ok"
	refillResultError = "error"
)

type poolMetrics struct {
	refills   *prometheus.CounterVec
	fallbacks prometheus.Counter
}

func newPoolMetrics() *poolMetrics {
	return &poolMetrics{
		refills: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dmassist",
				Subsystem: "random",
				Name:      "refills_total",
				Help:      "Randomness pool refills by result.",
			},
			[]string{"result"},
		),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dmassist",
			Subsystem: "random",
			Name:      "fallback_draws_total",
			Help:      "Draws served by the on-demand generator because the pool was empty.",
		}),
	}
}

// Register exposes the pool's refill, fallback and remaining-words metrics.
func (p *Pool) Register(reg prometheus.Registerer) error {
	remaining := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "dmassist",
		Subsystem: "random",
		Name:      "pool_remaining",
		Help:      "Pre-fetched random words left in the pool.",
	}, func() float64 { return float64(p.Remaining()) })

	for _, c := range []prometheus.Collector{p.metrics.refills, p.metrics.fallbacks, remaining} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
