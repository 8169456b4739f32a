// Package stream exposes the notification system over HTTP: a WebSocket
// endpoint streaming realtime events to subscribers, and a small REST
// surface for the notification feed.
//
// Every route authenticates the subscriber through query parameters
// (subscriber_id and subscriber_hash, see pkg/realtime) checked against an
// identity.Verifier. Authentication failures answer with a generic 401 so
// responses leak nothing about why verification failed.
//
// The WebSocket endpoint subscribes the connection to a hub.Bus and streams
// events as JSON frames until the client disconnects or the bus is torn
// down. Delivery is at most once: events published while the subscriber is
// offline are not replayed, clients refetch feed state after reconnecting.
//
//	svc, err := stream.New(cfg, verifier, bus, manager)
//	if err != nil { ... }
//	http.ListenAndServe(":8080", svc.Router())
package stream
