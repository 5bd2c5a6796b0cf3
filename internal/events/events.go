// Package events publishes storefront session and checkout events for downstream consumers.
package events

import (
	"context"
	"time"
)

type Type string

const (
	TypeLoggedIn          Type = "session.logged_in"
	TypeLoggedOut         Type = "session.logged_out"
	TypeOrderCreated      Type = "order.created"
	TypeCheckoutCompleted Type = "checkout.completed"
)

// Event is keyed by workspace id so one session's events stay ordered on a partition.
type Event struct {
	Type       Type           `json:"event_type"`
	Workspace  string         `json:"workspace_id"`
	UserID     int64          `json:"user_id,omitempty"`
	OrderID    int64          `json:"order_id,omitempty"`
	Amount     float64        `json:"amount,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
