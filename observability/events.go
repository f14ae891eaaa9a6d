package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"nftmarket/core/events"
)

type eventMetrics struct {
	marketEvents *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking structured marketplace
// events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			marketEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "market",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Count of marketplace events segmented by event type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.marketEvents)
	})
	return eventRegistry
}

// RecordMarketEvent increments the counter for the supplied event type.
func (m *eventMetrics) RecordMarketEvent(eventType string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(eventType)
	if normalized == "" {
		normalized = "unknown"
	}
	m.marketEvents.WithLabelValues(normalized).Inc()
}

// MetricsEmitter is an events.Emitter that records every event in the
// prometheus registry before forwarding it to the wrapped emitter.
type MetricsEmitter struct {
	Next events.Emitter
}

// Emit implements the events.Emitter interface.
func (m MetricsEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	Events().RecordMarketEvent(evt.EventType())
	if m.Next != nil {
		m.Next.Emit(evt)
	}
}
