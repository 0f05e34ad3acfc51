/*
Package events carries migration progress from the orchestrator to its
observers.

Every stage transition and every per-item outcome is published as an Event.
The journal records them and the metrics observer counts them; the
orchestrator itself knows neither.

	Orchestrator ──Publish──▶ Broker ──▶ journal.Recorder
	                                 └──▶ metrics.Observer

Delivery is synchronous: Publish returns after every handler has run, so a
run's journal entry is complete once the orchestrator returns. Handlers are
called in subscription order.

# Usage

	broker := events.NewBroker()
	unsubscribe := broker.Subscribe(func(e *events.Event) {
		fmt.Println(e.Type, e.Stage)
	})
	defer unsubscribe()

	broker.Publish(&events.Event{Type: events.EventStageStarted, Stage: "validate"})
*/
package events
