package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nasa-jpl/golascan/acquire"
	"github.com/nasa-jpl/golascan/scanner"
)

// metrics exposes the scan size and the acquisition progress to prometheus
type metrics struct {
	reg  *prometheus.Registry
	runs *prometheus.CounterVec
}

func newMetrics(sc *scanner.Scanner, runner *acquire.Runner) *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "golascan",
			Name:      "acquisitions_total",
			Help:      "Finished acquisitions, by outcome.",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(
		m.runs,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Subsystem: "golascan",
			Name:      "scan_steps",
			Help:      "Number of steps of the current scan.",
		}, func() float64 { return float64(sc.NSteps()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Subsystem: "golascan",
			Name:      "acquisition_step",
			Help:      "Steps completed by the running or last acquisition.",
		}, func() float64 { return float64(runner.Status().Step) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Subsystem: "golascan",
			Name:      "acquisition_running",
			Help:      "1 while an acquisition runs.",
		}, func() float64 {
			if runner.Status().Running {
				return 1
			}
			return 0
		}),
	)
	return m
}

func (m *metrics) done(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
