package memory

import (
	"context"
	"time"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notifications"
)

type NotificationStore struct {
	db *DB
}

var _ notifications.Store = (*NotificationStore)(nil)

// addNote appends n and evicts the oldest rows beyond keep.
func (s *state) addNote(n *models.Notification, keep int, now time.Time) {
	n.ID = s.id()
	n.CreatedAt = now
	list := append(s.notes[n.UserID], *n)
	if keep > 0 && len(list) > keep {
		list = append([]models.Notification(nil), list[len(list)-keep:]...)
	}
	s.notes[n.UserID] = list
}

func (s *NotificationStore) Add(_ context.Context, n *models.Notification, keep int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.st.addNote(n, keep, s.db.now())
	return nil
}

func (s *NotificationStore) ListRecent(_ context.Context, userID int64, limit int) ([]models.Notification, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	list := s.db.st.notes[userID]
	out := make([]models.Notification, 0, min(len(list), limit))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (s *NotificationStore) UnreadCount(_ context.Context, userID int64) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var n int64
	for _, note := range s.db.st.notes[userID] {
		if !note.Read {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID, id int64) (models.Notification, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	list := s.db.st.notes[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return list[i], true, nil
		}
	}
	return models.Notification{}, false, nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	list := s.db.st.notes[userID]
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) Delete(_ context.Context, userID, id int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	list := s.db.st.notes[userID]
	for i := range list {
		if list[i].ID == id {
			s.db.st.notes[userID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *NotificationStore) ClearAll(_ context.Context, userID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := int64(len(s.db.st.notes[userID]))
	delete(s.db.st.notes, userID)
	return n, nil
}
