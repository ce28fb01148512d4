package repository

import (
	"context"
	"database/sql"

	"wedsync-api/core/database"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type CredentialRepository interface {
	GetCredential(ctx context.Context, tenantID uuid.UUID, provider string) (*entity.OAuthCredential, error)
	SaveCredential(ctx context.Context, cred *entity.OAuthCredential) error
	DeleteCredential(ctx context.Context, tenantID uuid.UUID, provider string) error
}

type credentialRepository struct {
	db database.Database
}

func NewCredentialRepository(db database.Database) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetCredential(ctx context.Context, tenantID uuid.UUID, provider string) (*entity.OAuthCredential, error) {
	var cred entity.OAuthCredential
	query := `SELECT * FROM oauth_credentials WHERE tenant_id = $1 AND provider = $2`
	err := r.db.GetContext(ctx, &cred, query, tenantID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CredentialRepository:GetCredential:Error", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return &cred, nil
}

// SaveCredential upserts the record as a full replacement so a stale
// refresh token is never left paired with a newer access token.
func (r *credentialRepository) SaveCredential(ctx context.Context, cred *entity.OAuthCredential) error {
	query := `
		INSERT INTO oauth_credentials (tenant_id, provider, access_token, refresh_token, expires_at, scopes, created_at, updated_at)
		VALUES (:tenant_id, :provider, :access_token, :refresh_token, :expires_at, :scopes, NOW(), NOW())
		ON CONFLICT (tenant_id, provider)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			scopes = EXCLUDED.scopes,
			updated_at = NOW()
	`
	_, err := r.db.NamedExecContext(ctx, query, cred)
	if err != nil {
		logger.Error("CredentialRepository:SaveCredential:Error", "error", err, "tenant_id", cred.TenantID)
		return err
	}
	return nil
}

func (r *credentialRepository) DeleteCredential(ctx context.Context, tenantID uuid.UUID, provider string) error {
	query := `DELETE FROM oauth_credentials WHERE tenant_id = $1 AND provider = $2`
	return r.db.ExecContext(ctx, query, tenantID, provider)
}
