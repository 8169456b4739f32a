// Package hub implements the backend half of the notification channel:
// fan-out of feed-state events to connected subscriber sessions.
//
// A Bus routes events by subscriber identifier. Each open session (browser
// tab, device) holds its own Subscriber; sessions of the same subscriber are
// independent and each receives its own copy of every event. Delivery is
// at-most-once per session: sends never block, and events are dropped for
// sessions whose buffer is full. The durable feed store remains the source
// of truth, so clients reconcile by re-querying it after gaps.
//
// Two implementations are provided:
//
//   - MemoryBus: in-process fan-out for single-instance deployments and tests.
//   - RedisBus: cross-instance fan-out over Redis Pub/Sub, so an event
//     published on one instance reaches sessions connected to another.
//
// # Usage
//
//	bus := hub.NewMemoryBus(64)
//	defer bus.Close()
//
//	sub, err := bus.Subscribe(ctx, "subscriber-1")
//	if err != nil { ... }
//	defer sub.Close()
//
//	go bus.Publish(ctx, "subscriber-1", event.NewUnseenCountChanged(3))
//
//	for e := range sub.Events() {
//	    // deliver e over the session transport
//	}
package hub
