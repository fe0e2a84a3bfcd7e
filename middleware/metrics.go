package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shrek82/jsql/core"
)

// MetricsBuilder builds a middleware observing command latency as a
// prometheus summary labeled by execution kind and outcome.
type MetricsBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func (b MetricsBuilder) Build() core.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Name:      b.Name,
		Help:      b.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"kind", "status"})

	prometheus.MustRegister(vector)

	return func(next core.ExecFunc) core.ExecFunc {
		return func(ctx context.Context, info *core.ExecInfo) *core.ExecResult {
			startTime := time.Now()
			res := next(ctx, info)
			duration := time.Since(startTime).Milliseconds()

			status := "ok"
			if res.Err != nil {
				status = "error"
			}
			vector.WithLabelValues(info.Kind, status).Observe(float64(duration))
			return res
		}
	}
}
