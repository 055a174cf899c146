package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	entries  *prometheus.CounterVec
	exits    *prometheus.CounterVec
	revenue  *prometheus.CounterVec
	occupied *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec) {
	ent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_entries_total",
			Help: "Number of vehicles that entered the facility",
		},
		[]string{"vehicle_type"},
	)
	ext := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_exits_total",
			Help: "Number of vehicles that exited the facility",
		},
		[]string{"vehicle_type"},
	)
	rev := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_revenue_total",
			Help: "Total fare amount collected at exit",
		},
		[]string{"vehicle_type"},
	)
	occ := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parking_occupied_spots",
			Help: "Number of currently occupied spots",
		},
		[]string{"vehicle_type"},
	)
	return ent, ext, rev, occ
}

func init() {
	entries, exits, revenue, occupied = newCollectors()
	MustRegister(nil)
}

// MustRegister registers the parking metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(entries, exits, revenue, occupied)
}

// Reset reinitializes the collectors for testing purposes and registers them
// on the provided registry if not nil.
func Reset(reg prometheus.Registerer) {
	entries, exits, revenue, occupied = newCollectors()
	if reg != nil {
		MustRegister(reg)
	}
}

// RecordEntry counts a completed entry workflow.
func RecordEntry(vehicleType string) {
	entries.WithLabelValues(vehicleType).Inc()
	occupied.WithLabelValues(vehicleType).Inc()
}

// RecordExit counts a completed exit workflow and its collected fare.
func RecordExit(vehicleType string, price float64) {
	exits.WithLabelValues(vehicleType).Inc()
	revenue.WithLabelValues(vehicleType).Add(price)
	occupied.WithLabelValues(vehicleType).Dec()
}
