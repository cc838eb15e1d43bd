// Package contact implements contact form submission: the configuration
// guard for the four delivery identifiers, the orchestrator that sends the
// admin notification and the auto-reply, and the per-form state machine
// (Idle, Sending, Succeeded, Failed) that the HTTP layer renders.
//
// The orchestrator supports two send policies:
//
//   - PolicySequential: admin first; the auto-reply goes out only when the
//     admin send succeeded, and both must succeed.
//   - PolicyIndependent: both sends are unrelated; the admin outcome is only
//     logged and the auto-reply alone decides the result.
//
// Delivery failures are never fatal. They come back as domain errors carrying
// a generic visitor-facing message while the provider detail is logged.
package contact
