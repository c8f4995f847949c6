package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	userCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fm_user_cache_hits_total",
		Help: "User lookups served from the in-process cache.",
	})
	userCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fm_user_cache_misses_total",
		Help: "User lookups that went to the database.",
	})
	enqueueFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fm_enqueue_failures_total",
		Help: "Background jobs that could not be enqueued.",
	}, []string{"queue"})
)
