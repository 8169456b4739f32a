package stream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/hub"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// handleWS upgrades the request and streams bus events to the subscriber
// until either side disconnects.
func (s *Service) handleWS(w http.ResponseWriter, r *http.Request) {
	subID := subscriberID(r)

	sub, err := s.bus.Subscribe(r.Context(), subID)
	if err != nil {
		s.log.LogAttrs(r.Context(), slog.LevelError, "failed to subscribe to event bus",
			logger.SubscriberID(subID),
			logger.Error(err),
		)
		respondError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		_ = sub.Close()
		return
	}

	s.log.LogAttrs(r.Context(), slog.LevelDebug, "channel connected",
		logger.SubscriberID(subID),
	)

	go s.writePump(ws, sub, subID)
	s.readPump(ws)

	_ = sub.Close()
	_ = ws.Close()

	s.log.LogAttrs(r.Context(), slog.LevelDebug, "channel disconnected",
		logger.SubscriberID(subID),
	)
}

// writePump streams subscriber events as JSON frames and keeps the
// connection alive with periodic pings. It exits when the subscriber
// channel closes (bus teardown or sub.Close) or a write fails.
func (s *Service) writePump(ws *websocket.Conn, sub hub.Subscriber, subID string) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-sub.Events():
			_ = ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				_ = ws.Close()
				return
			}
			if err := ws.WriteJSON(e); err != nil {
				s.log.LogAttrs(context.Background(), slog.LevelDebug, "channel write failed",
					logger.SubscriberID(subID),
					logger.EventName(string(e.Name)),
					logger.Error(err),
				)
				_ = ws.Close()
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = ws.Close()
				return
			}
		}
	}
}

// readPump consumes inbound frames so close and pong control frames are
// processed. Subscribers never send data frames; anything received is
// discarded.
func (s *Service) readPump(ws *websocket.Conn) {
	ws.SetReadLimit(s.cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
