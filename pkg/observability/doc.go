/*
Package observability turns orchestrator lifecycle events into logs and
Prometheus metrics.

Both are exposed as domain.LifecycleHooks and can be combined with Merge:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.LoggingHooks(logger).Merge(metrics.Hooks())
	client, _ := scadwrap.New(model, opts, exec, scadwrap.WithLifecycleHooks(hooks))
*/
package observability
