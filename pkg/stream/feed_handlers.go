package stream

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/feed"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// listQuery parses pagination and filter parameters for handleList.
// Unparseable numbers fall back to zero values.
func listQuery(r *http.Request) feed.ListOptions {
	q := r.URL.Query()

	opts := feed.ListOptions{
		OnlyUnseen: q.Get("only_unseen") == "true",
		Channel:    feed.ChannelType(q.Get("channel")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		opts.Offset = offset
	}
	return opts
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	subID := subscriberID(r)
	opts := listQuery(r)

	notifications, err := s.feed.List(r.Context(), subID, opts)
	if err != nil {
		s.respondFeedError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		Data: notifications,
		Meta: map[string]any{
			"limit":  opts.Limit,
			"offset": opts.Offset,
		},
	})
}

func (s *Service) handleUnseenCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.feed.CountUnseen(r.Context(), subscriberID(r))
	if err != nil {
		s.respondFeedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Data: event.UnseenCount{UnseenCount: count}})
}

func (s *Service) handleMarkSeen(w http.ResponseWriter, r *http.Request) {
	notifID := chi.URLParam(r, "id")
	if notifID == "" {
		respondError(w, http.StatusBadRequest, "missing_id")
		return
	}

	if err := s.feed.MarkSeen(r.Context(), subscriberID(r), notifID); err != nil {
		s.respondFeedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleMarkAllSeen(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.MarkAllSeen(r.Context(), subscriberID(r)); err != nil {
		s.respondFeedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	notifID := chi.URLParam(r, "id")
	if notifID == "" {
		respondError(w, http.StatusBadRequest, "missing_id")
		return
	}

	if err := s.feed.Delete(r.Context(), subscriberID(r), notifID); err != nil {
		s.respondFeedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondFeedError maps feed errors to status codes. Storage details never
// reach the client; they are logged and answered with a generic 500.
func (s *Service) respondFeedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feed.ErrNotificationNotFound):
		respondError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, feed.ErrMissingID), errors.Is(err, feed.ErrMissingSubscriberID):
		respondError(w, http.StatusBadRequest, "bad_request")
	default:
		s.log.LogAttrs(r.Context(), slog.LevelError, "feed request failed",
			logger.SubscriberID(subscriberID(r)),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal_error")
	}
}
