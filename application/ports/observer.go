package ports

import "canvascore/domain/events"

// CommandObserver receives synchronous notifications at well-defined points
// of the command state machine. The rendering layer implements this to learn
// about entity changes; it holds no state of its own in this core.
type CommandObserver interface {
	OnCommandEvent(event events.DomainEvent)
}

// ObserverFunc adapts a plain function to the CommandObserver interface
type ObserverFunc func(event events.DomainEvent)

// OnCommandEvent implements CommandObserver
func (f ObserverFunc) OnCommandEvent(event events.DomainEvent) {
	f(event)
}
