// Package health serves liveness and readiness probes.
//
// Readiness runs named [Checks] in parallel under a shared timeout. The
// backend module contributes checks for Postgres, redis and the storage
// bucket:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(module.Healthchecks(),
//		health.WithTimeout(3*time.Second),
//	))
//
// Responses are plain text unless the client asks for JSON through the
// Accept header or ?format=json.
package health
