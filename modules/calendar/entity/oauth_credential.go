package entity

import (
	"time"

	"wedsync-api/core/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OAuthCredential is the stored grant for a tenant+provider pair. Owned
// exclusively by the token service: writes are always full replacements so
// a mismatched access/refresh pair can never be stored.
type OAuthCredential struct {
	entity.BaseEntity
	TenantID     uuid.UUID      `db:"tenant_id" json:"tenant_id"`
	Provider     string         `db:"provider" json:"provider"`
	AccessToken  string         `db:"access_token" json:"-"`
	RefreshToken *string        `db:"refresh_token" json:"-"`
	ExpiresAt    *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	Scopes       pq.StringArray `db:"scopes" json:"scopes"`
}

func (OAuthCredential) TableName() string {
	return "oauth_credentials"
}
