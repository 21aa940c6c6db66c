package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SubsystemOrigin = "origin"
	SubsystemCN     = "cn"
)

var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opsctl",
			Name:      "probes_total",
			Help:      "Probes performed, partitioned by subsystem and outcome.",
		},
		[]string{"subsystem", "outcome"},
	)

	probeDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "opsctl",
			Name:      "probe_seconds",
			Help:      "Probe wall-clock duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 10},
		},
		[]string{"subsystem"},
	)

	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opsctl",
			Name:      "alerts_total",
			Help:      "Alert dispatch attempts, partitioned by delivery result.",
		},
		[]string{"delivered"},
	)

	pushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opsctl",
			Name:      "pushes_total",
			Help:      "Result pushes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register attaches opsctl collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		probesTotal,
		probeDurationSeconds,
		alertsTotal,
		pushesTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveProbe(subsystem string, d time.Duration, ok bool) {
	outcome := "fail"
	if ok {
		outcome = "ok"
	}
	probesTotal.WithLabelValues(subsystem, outcome).Inc()
	if d < 0 {
		d = 0
	}
	probeDurationSeconds.WithLabelValues(subsystem).Observe(d.Seconds())
}

func ObserveAlert(delivered bool) {
	v := "false"
	if delivered {
		v = "true"
	}
	alertsTotal.WithLabelValues(v).Inc()
}

func ObservePush(ok bool) {
	outcome := "fail"
	if ok {
		outcome = "ok"
	}
	pushesTotal.WithLabelValues(outcome).Inc()
}
