// Package event provides a pub-sub event bus that decouples the cook
// scheduler from the things watching it: the live watch view, the audit
// trail and template hot reload.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher with thread-safe operations
//   - [BusSink]: Adapts scheduler progress updates into [SessionProgressEvent]s
//
// # Event Categories
//
// Session lifecycle:
//   - [SessionStartedEvent]
//   - [SessionProgressEvent]
//   - [SessionFinishedEvent]
//
// Templates:
//   - [TemplatesReloadedEvent]
//
// # Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeSessionFinished, func(e event.Event) {
//		fin := e.(event.SessionFinishedEvent)
//		fmt.Println(fin.SessionID, fin.Status)
//	})
//
// Delivery is synchronous and at-least-once per subscriber; there is no
// ordering guarantee between a progress event and report rendering.
package event
