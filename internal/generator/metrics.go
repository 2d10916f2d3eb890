package generator

import "github.com/prometheus/client_golang/prometheus"

var (
	genAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avatar_generation_attempts_total",
			Help: "Generation attempts per provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	genFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "avatar_generation_fallbacks_total",
			Help: "Generations served by the deterministic fallback provider",
		},
	)
)

func init() {
	prometheus.MustRegister(genAttempts)
	prometheus.MustRegister(genFallbacks)
}
