package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/repository"
)

var (
	ErrCategoryNotFound = repository.ErrCategoryNotFound
	ErrCategoryExists   = repository.ErrCategoryExists
	ErrCategoryInUse    = repository.ErrCategoryInUse
	ErrTeamNotFound     = repository.ErrTeamNotFound
	ErrTeamExists       = repository.ErrTeamExists
	ErrTeamInUse        = repository.ErrTeamInUse
	ErrEventNotFound    = repository.ErrEventNotFound
	ErrEventInUse       = repository.ErrEventInUse
	ErrEventCompleted   = repository.ErrEventCompleted
	ErrMedalNotFound    = repository.ErrMedalNotFound
	ErrMedalDuplicate   = repository.ErrMedalDuplicate
)

// ChangePublisher announces committed writes. *eventbus.Bus implements it.
type ChangePublisher interface {
	Publish(ctx context.Context, change eventbus.Change) error
}

// publish never fails the write it follows: the data is already committed.
func publish(ctx context.Context, pub ChangePublisher, change eventbus.Change) {
	if pub == nil {
		return
	}

	if err := pub.Publish(ctx, change); err != nil {
		zap.L().Warn("change signal not delivered",
			zap.String("topic", change.Topic),
			zap.String("action", change.Action),
			zap.Error(err),
		)
	}
}
