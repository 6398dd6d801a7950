package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pathQueryTotal counts path queries by result and update policy
	pathQueryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grid_path_query_total",
		Help: "Total path queries by result type",
	}, []string{"result", "policy"})

	// pathQueryDuration tracks path query latency
	pathQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grid_path_query_duration_seconds",
		Help:    "Path query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to ~330ms
	}, []string{"policy"})

	// pathQueryExpanded tracks how many frontier entries each query expanded
	pathQueryExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grid_path_query_expanded_nodes",
		Help:    "Nodes expanded per path query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// gridBuildDuration tracks grid construction time
	gridBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grid_build_duration_seconds",
		Help:    "Grid construction duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	// targetDispatchTotal counts destinations handed to agents
	targetDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grid_target_dispatch_total",
		Help: "Destinations dispatched to agents by outcome",
	}, []string{"outcome"})
)
