package metrics

import "time"

// Submission outcomes
const (
	ResultSucceeded   = "succeeded"
	ResultFailed      = "failed"
	ResultConfigError = "config_error"
	ResultInFlight    = "rejected_in_flight"
)

// SubmissionFinished records the outcome of one Submit call
func SubmissionFinished(policy, result string) {
	SubmissionsTotal.WithLabelValues(policy, result).Inc()
}

// DeliverySucceeded records an accepted provider call
func DeliverySucceeded(template string, duration time.Duration) {
	DeliveriesTotal.WithLabelValues(template, "ok").Inc()
	DeliveryDuration.WithLabelValues(template).Observe(duration.Seconds())
}

// DeliveryFailed records a rejected or broken provider call
func DeliveryFailed(template string, duration time.Duration) {
	DeliveriesTotal.WithLabelValues(template, "error").Inc()
	DeliveryDuration.WithLabelValues(template).Observe(duration.Seconds())
}
