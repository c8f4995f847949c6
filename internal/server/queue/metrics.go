package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultDone    = "done"
	resultRetried = "retried"
	resultFailed  = "failed"
)

var jobsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fm_jobs_processed_total",
		Help: "Jobs processed by queue and outcome.",
	},
	[]string{"queue", "result"},
)
