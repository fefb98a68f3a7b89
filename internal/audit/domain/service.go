package domain

import (
	"context"
	"errors"
)

type Service interface {
	// AuditLog records action against target using the actor found on ctx.
	AuditLog(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

var (
	ErrInvalidAction     = errors.New("invalid_action")
	ErrInvalidTargetType = errors.New("invalid_target_type")
)
