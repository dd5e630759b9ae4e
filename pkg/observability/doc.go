/*
Package observability turns session lifecycle events into structured logs and
Prometheus metrics.

Both outputs are plain domain.LifecycleHooks values, so they can be merged with
Combine and handed to session.WithLifecycleHooks:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(observability.Logging(logger), metrics.Hooks())
*/
package observability
