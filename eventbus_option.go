package questscale

import "github.com/ZanzyTHEbar/questscale/internal/eventbus"

// WithEventBus sets the event bus component.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(a *Agent) {
		a.eventBus = bus
	}
}
