// Package feed implements the durable notification feed: the source of
// truth behind the realtime channel.
//
// The package follows a layered design:
//
//   - Storage: persistence of notification records (memory, Postgres, Mongo)
//   - Deliverer: best-effort realtime/side-channel delivery
//   - Manager: orchestration of storage and delivery
//
// # Basic usage
//
//	storage := feed.NewMemoryStorage()
//	bus := hub.NewMemoryBus(64)
//	manager := feed.NewManager(storage, feed.NewBusDeliverer(bus, storage))
//
//	err := manager.Send(ctx, feed.Notification{
//	    SubscriberID: "subscriber-1",
//	    Channel:      feed.ChannelInApp,
//	    Content:      "Your report is ready",
//	    CTA:          &feed.CTA{Type: feed.CTARedirect, RedirectURL: "/reports/42"},
//	})
//
// Send stores the record first and then attempts realtime delivery; a
// delivery failure never fails the send, because the stored record remains
// available through the query interface. Query failures, on the other hand,
// propagate to the caller and are safe to retry.
//
// # Delivery channels
//
// Each notification targets one channel. ChannelInApp records are fanned
// out over the realtime bus (notification_received plus a fresh
// unseen_count_changed). ChannelEmail records are sent through Postmark by
// EmailDeliverer. MultiDeliverer combines deliverers; each one skips
// channels it does not handle.
package feed
