package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin_key"
	ActorTypeCLI    ActorType = "cli"
	ActorTypeSystem ActorType = "system"
)

// Audited operator actions.
const (
	ActionOrderResubmit = "order.resubmit"
	ActionCatalogImport = "catalog.import"
)

// AuditLog captures an immutable record of an operator action.
type AuditLog struct {
	ID         snowflake.ID      `json:"id"`
	ActorType  string            `json:"actor_type"`
	ActorID    *string           `json:"actor_id,omitempty"`
	Action     string            `json:"action"`
	TargetType string            `json:"target_type"`
	TargetID   *string           `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	IPAddress  *string           `json:"ip_address,omitempty"`
	UserAgent  *string           `json:"user_agent,omitempty"`
	RequestID  *string           `json:"request_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
