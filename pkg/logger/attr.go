package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// SubscriberID records the subscriber identifier under the key "subscriber_id".
func SubscriberID(id string) slog.Attr {
	return slog.String("subscriber_id", id)
}

// EventName records the channel event name under the key "event".
func EventName(name string) slog.Attr {
	return slog.String("event", name)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id string) slog.Attr {
	return slog.String("notification_id", id)
}

// ConnState records the channel connection state under the key "conn_state".
func ConnState(state string) slog.Attr {
	return slog.String("conn_state", state)
}
