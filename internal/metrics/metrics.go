// Package metrics exposes session activity as Prometheus counters.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phrazzld/action-deck/internal/events"
)

// Collector counts session signals. It is an events.EventHandler.
type Collector struct {
	Completed  prometheus.Counter
	Skipped    prometheus.Counter
	Reshuffles prometheus.Counter
	Gate       *prometheus.CounterVec
}

var _ events.EventHandler = (*Collector)(nil)

// NewCollector registers the counters with reg. A nil reg uses the default
// Prometheus registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		Completed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "actiondeck",
			Name:      "cards_completed_total",
			Help:      "Cards accepted and recorded as wins",
		}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "actiondeck",
			Name:      "cards_skipped_total",
			Help:      "Cards skipped to the back of the deck",
		}),
		Reshuffles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "actiondeck",
			Name:      "reshuffles_total",
			Help:      "Session decks drawn after the first",
		}),
		Gate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "actiondeck",
			Name:      "gate_events_total",
			Help:      "Quota gating signals by kind",
		}, []string{"signal"}),
	}
}

// HandleEvent implements events.EventHandler.
func (c *Collector) HandleEvent(_ context.Context, e *events.Event) error {
	switch e.Type {
	case events.TypeCardCompleted:
		c.Completed.Inc()
	case events.TypeCardSkipped:
		c.Skipped.Inc()
	case events.TypeDeckReshuffled:
		c.Reshuffles.Inc()
	case events.TypeAtCapacity:
		c.Gate.WithLabelValues("at_capacity").Inc()
	case events.TypePaywallOpened:
		c.Gate.WithLabelValues("paywall_opened").Inc()
	case events.TypePaywallDismissed:
		c.Gate.WithLabelValues("paywall_dismissed").Inc()
	}
	return nil
}
