package service

import (
	"context"

	"github.com/damoang/angple-wiki/internal/domain"
)

// EventPublisher delivers review events to connected reviewers
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ReviewEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.ReviewEvent) {}
