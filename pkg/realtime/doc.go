// Package realtime implements the client side of the notification channel:
// a persistent session that receives named feed-state events (for example
// unseen-count changes) from a notification backend without polling.
//
// # Session lifecycle
//
// A session moves through the states disconnected -> connecting ->
// connected -> (reconnecting | disconnected). Connection establishment is
// asynchronous: Connect returns immediately and the session dials in the
// background, reconnecting with backoff after network failures. Connection
// problems surface only as state changes, never as per-event errors.
//
// Delivery is at-most-once per session. Events emitted while the session is
// disconnected are not replayed after reconnect; consumers reconcile by
// re-fetching authoritative state (for example the unseen count) when the
// state returns to connected:
//
//	session := realtime.NewSession(dialer,
//	    realtime.WithStateHandler(func(state realtime.ConnState) {
//	        if state == realtime.StateConnected {
//	            go refreshUnseenCount()
//	        }
//	    }),
//	)
//
// # Subscriptions
//
// Handlers are registered per event name. Subscribing is idempotent: a
// second subscription to the same name replaces the previous handler, so
// re-subscribing after a reconnect never causes duplicate delivery. A
// single Unsubscribe fully removes the registration; unsubscribing an
// already-removed registration is a no-op. Events with no registered
// handler are ignored.
//
//	sub, err := session.Subscribe(event.UnseenCountChanged, func(e event.Event) {
//	    var payload event.UnseenCount
//	    if err := e.Decode(&payload); err == nil {
//	        updateBadge(payload.UnseenCount)
//	    }
//	})
//	...
//	session.Unsubscribe(sub)
//
// Close tears the session down synchronously: once it returns, no handler
// will fire again. Handlers must therefore not call Close themselves.
package realtime
