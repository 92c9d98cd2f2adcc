package webvhhost

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// resolvedTotal counts resolution attempts by method and outcome,
// grounded on did/metrics.go's promauto.NewCounterVec pattern.
var resolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webvh_resolved_total",
	Help: "Total number of did:webvh resolution attempts",
}, []string{"method", "result"})

// witnessChecksTotal counts witness-threshold checks by outcome.
var witnessChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webvh_witness_checks_total",
	Help: "Total number of witness threshold checks performed during resolution",
}, []string{"result"})

// ObserveResolution records a resolution attempt's outcome.
func ObserveResolution(method string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	resolvedTotal.WithLabelValues(method, result).Inc()
}

// ObserveWitnessCheck records a witness threshold check's outcome.
func ObserveWitnessCheck(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	witnessChecksTotal.WithLabelValues(result).Inc()
}
