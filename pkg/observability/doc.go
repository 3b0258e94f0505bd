/*
Package observability turns inspector lifecycle hooks into logs and Prometheus metrics.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))
	insp, _ := portscope.New("", portscope.WithHost(host), portscope.WithLifecycleHooks(hooks))
*/
package observability
