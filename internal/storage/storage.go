// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"mediathek_bot/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, id int64) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, chatID int64) ([]model.Subscription, error)
	ListAllSubscriptions(ctx context.Context) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, chatID, id int64) (bool, error)
	UpdateSeen(ctx context.Context, id int64, seen []string) (bool, error)

	CreateFilter(ctx context.Context, f *model.Filter) error
	ListFilters(ctx context.Context, subscriptionID int64) ([]model.Filter, error)
	GetFilter(ctx context.Context, id int64) (*model.Filter, error)
	DeleteFilter(ctx context.Context, id int64) error

	Close() error
}
