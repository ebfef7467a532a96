// Package notifications is the per-user append-only message log.
//
// Every write is followed by a retention pass that keeps only the newest
// rows for the user. New notifications are also pushed to the user's open
// websocket connections through a Publisher; push delivery is best-effort
// and never affects what was stored.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

const (
	// MaxList caps a single listing.
	MaxList = 50

	DefaultIcon = "📢"
	OrderIcon   = "✅"
	StatusIcon  = "📦"
)

// Store persists notifications. Add inserts n, fills its id and timestamp
// and then deletes all but the newest keep rows for n.UserID.
type Store interface {
	Add(ctx context.Context, n *models.Notification, keep int) error
	ListRecent(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) (models.Notification, bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
	ClearAll(ctx context.Context, userID int64) (int64, error)
}

// Publisher pushes a stored notification to live subscribers.
type Publisher interface {
	Publish(userID int64, n models.Notification)
}

type Service struct {
	store     Store
	pub       Publisher
	retention int
	log       *slog.Logger
}

func NewService(store Store, pub Publisher, retention int, log *slog.Logger) *Service {
	return &Service{store: store, pub: pub, retention: retention, log: log}
}

// Retention is how many notifications are kept per user.
func (s *Service) Retention() int { return s.retention }

// OrderPlaced builds the notification appended when an order is created.
func OrderPlaced(userID int64, orderNumber string) models.Notification {
	return models.Notification{
		UserID:  userID,
		Title:   "Order Placed!",
		Message: fmt.Sprintf("Your order %s has been placed successfully", orderNumber),
		Type:    models.NotificationTypeOrder,
		Icon:    OrderIcon,
	}
}

// StatusChanged builds the notification appended on an order transition.
func StatusChanged(userID int64, status models.OrderStatus) models.Notification {
	return models.Notification{
		UserID:  userID,
		Title:   "Order Update",
		Message: fmt.Sprintf("Your order status has been updated to: %s", status),
		Type:    models.NotificationTypeOrder,
		Icon:    StatusIcon,
	}
}

// Add stores a notification for userID and pushes it to live connections.
func (s *Service) Add(ctx context.Context, userID int64, title, message, typ, icon string) (models.Notification, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return models.Notification{}, apperr.Validation("title and message are required")
	}
	if typ == "" {
		typ = models.NotificationTypeGeneral
	}
	if icon == "" {
		icon = DefaultIcon
	}

	n := models.Notification{UserID: userID, Title: title, Message: message, Type: typ, Icon: icon}
	if err := s.store.Add(ctx, &n, s.retention); err != nil {
		return models.Notification{}, apperr.Internal("Failed to create notification", err)
	}
	s.Push(n)
	return n, nil
}

// Push delivers an already stored notification to live subscribers.
func (s *Service) Push(n models.Notification) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(n.UserID, n)
}

// ListRecent returns the newest notifications first. limit is clamped to
// MaxList.
func (s *Service) ListRecent(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxList {
		limit = MaxList
	}
	list, err := s.store.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal("Failed to get notifications", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("Failed to get unread count", err)
	}
	return n, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) (models.Notification, error) {
	n, ok, err := s.store.MarkRead(ctx, userID, id)
	if err != nil {
		return models.Notification{}, apperr.Internal("Failed to mark notification as read", err)
	}
	if !ok {
		return models.Notification{}, apperr.NotFound("Notification not found")
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("Failed to mark all as read", err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.store.Delete(ctx, userID, id)
	if err != nil {
		return apperr.Internal("Failed to delete notification", err)
	}
	if !ok {
		return apperr.NotFound("Notification not found")
	}
	return nil
}

func (s *Service) ClearAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.ClearAll(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("Failed to clear notifications", err)
	}
	return n, nil
}
