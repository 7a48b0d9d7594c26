package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pageRenderCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quarterdeck_pages_rendered",
	Help: "Number of moderation pages rendered",
}, []string{"page"})

var reportsGroupedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "quarterdeck_reports_grouped",
	Help: "Number of reports folded into content groups",
})

var modActionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quarterdeck_mod_actions",
	Help: "Number of moderation actions forwarded upstream",
}, []string{"action", "outcome"})

var upstreamErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quarterdeck_upstream_errors",
	Help: "Number of upstream store errors, by HTTP status code",
}, []string{"status"})
