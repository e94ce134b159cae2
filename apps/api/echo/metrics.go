package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	scanLogged  = "logged"
	scanSkipped = "skipped"
	scanFailed  = "failed"
)

type metrics struct {
	scans       *prometheus.CounterVec
	lateEntries prometheus.Counter
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatelog",
			Name:      "scans_total",
			Help:      "Gate scans by outcome.",
		}, []string{"result", "kind"}),
		lateEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gatelog",
			Name:      "late_entries_total",
			Help:      "Entries recorded after the late time or before the start time.",
		}),
	}
	reg.MustRegister(m.scans, m.lateEntries)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *metrics) handler(reg *prometheus.Registry) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}
