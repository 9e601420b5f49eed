// Package metrics exposes Prometheus counters for the registration and
// race-day flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsCreated counts accepted registrations.
	RegistrationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "korpri_registrations_created_total",
		Help: "Registrations inserted with pending payment status.",
	})

	// PaymentWebhooks counts gateway notifications by the mapped domain status.
	PaymentWebhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "korpri_payment_webhooks_total",
		Help: "Midtrans notifications processed, labeled by mapped payment status.",
	}, []string{"status"})

	// RaceOperations counts race-day operations by op and outcome.
	RaceOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "korpri_race_operations_total",
		Help: "Race-day operations, labeled by operation and success/rejected.",
	}, []string{"op", "outcome"})
)

// Outcome returns the label value for a race operation result.
func Outcome(success bool) string {
	if success {
		return "success"
	}
	return "rejected"
}
