package port

// AuthMetrics records the outcome of auth operations and best-effort side effects.
type AuthMetrics interface {
	ObserveAuthOperation(operation, outcome string)
	// ObserveDeliveryFailure counts a failed email ("email") or event ("event") dispatch of the given kind.
	ObserveDeliveryFailure(channel, kind string)
}

// NopAuthMetrics discards every observation.
type NopAuthMetrics struct{}

// ObserveAuthOperation implements AuthMetrics.
func (NopAuthMetrics) ObserveAuthOperation(string, string) {}

// ObserveDeliveryFailure implements AuthMetrics.
func (NopAuthMetrics) ObserveDeliveryFailure(string, string) {}
