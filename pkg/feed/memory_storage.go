package feed

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation for development and
// testing. All methods are safe for concurrent use.
type MemoryStorage struct {
	notifications map[string][]Notification // subscriberID -> records
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.SubscriberID == "" {
		return ErrMissingSubscriberID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.SubscriberID] = append(s.notifications[n.SubscriberID], n)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, subscriberID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[subscriberID] {
		if n.ID == notifID {
			// Return a copy to prevent mutation of stored data.
			notif := n
			return &notif, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, subscriberID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications[subscriberID] {
		if n.IsExpired() {
			continue
		}
		if opts.OnlyUnseen && n.Seen {
			continue
		}
		if opts.Channel != "" && n.Channel != opts.Channel {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	// Newest first.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkSeen(ctx context.Context, subscriberID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]bool, len(notifIDs))
	for _, id := range notifIDs {
		ids[id] = true
	}

	records := s.notifications[subscriberID]
	for i := range records {
		if ids[records[i].ID] && !records[i].Seen {
			records[i].MarkAsSeen()
		}
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, subscriberID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]bool, len(notifIDs))
	for _, id := range notifIDs {
		ids[id] = true
	}

	records := s.notifications[subscriberID]
	kept := records[:0]
	for _, n := range records {
		if !ids[n.ID] {
			kept = append(kept, n)
		}
	}
	s.notifications[subscriberID] = kept
	return nil
}

func (s *MemoryStorage) CountUnseen(ctx context.Context, subscriberID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[subscriberID] {
		if !n.Seen && !n.IsExpired() {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for subID, records := range s.notifications {
		kept := records[:0]
		for _, n := range records {
			if n.IsExpired() {
				removed++
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == 0 {
			delete(s.notifications, subID)
			continue
		}
		s.notifications[subID] = kept
	}
	return removed, nil
}
