package service

import (
	"context"
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/auditcontext"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/clock"
	obsctx "github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/context"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		return domain.ErrInvalidTargetType
	}

	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(domain.ActorTypeSystem)
	}

	meta := datatypes.JSONMap{}
	for key, value := range metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		meta[key] = value
	}

	entry := &domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    optional(actorID),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   meta,
		IPAddress:  optional(auditcontext.IPAddressFromContext(ctx)),
		UserAgent:  optional(auditcontext.UserAgentFromContext(ctx)),
		RequestID:  optional(obsctx.RequestIDFromContext(ctx)),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Warn("audit log insert failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
