// Package events carries session signals from the controller to whoever is
// listening: the HTTP polling feed, the metrics collector and the CLI.
//
// The controller emits through EventEmitter without knowing its handlers.
// InMemoryEventEmitter fans each Event out to every registered EventHandler,
// and Feed buffers recent events with sequence numbers for polling clients.
package events
