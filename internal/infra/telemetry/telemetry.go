package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Rista10/event-planner-application/internal/core/port"
)

const namespace = "event_planner"

// Provider holds the auth service collectors.
type Provider struct {
	authOperations   *prometheus.CounterVec
	deliveryFailures *prometheus.CounterVec
}

// NewProvider creates the auth collectors and registers them with reg (the default registerer when nil).
func NewProvider(reg prometheus.Registerer) (*Provider, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Auth operations partitioned by operation and outcome.",
	}, []string{"operation", "outcome"})

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_failures_total",
		Help:      "Best-effort email and event dispatches that failed, partitioned by channel and kind.",
	}, []string{"channel", "kind"})

	var err error
	if ops, err = registerCounterVec(reg, ops); err != nil {
		return nil, err
	}
	if failures, err = registerCounterVec(reg, failures); err != nil {
		return nil, err
	}

	return &Provider{authOperations: ops, deliveryFailures: failures}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// ObserveAuthOperation implements port.AuthMetrics.
func (p *Provider) ObserveAuthOperation(operation, outcome string) {
	if p == nil {
		return
	}
	p.authOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveDeliveryFailure implements port.AuthMetrics.
func (p *Provider) ObserveDeliveryFailure(channel, kind string) {
	if p == nil {
		return
	}
	p.deliveryFailures.WithLabelValues(channel, kind).Inc()
}

// AuthOperations exposes the operation counter.
func (p *Provider) AuthOperations() *prometheus.CounterVec {
	return p.authOperations
}

// DeliveryFailures exposes the delivery failure counter.
func (p *Provider) DeliveryFailures() *prometheus.CounterVec {
	return p.deliveryFailures
}

var _ port.AuthMetrics = (*Provider)(nil)
