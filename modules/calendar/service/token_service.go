package service

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"wedsync-api/core/config"
	"wedsync-api/core/constants"
	"wedsync-api/core/errors"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/dto"
	"wedsync-api/modules/calendar/entity"
	"wedsync-api/modules/calendar/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenService owns the stored OAuth grant for a tenant: lookup, expiry
// evaluation and refresh. Nothing above it talks to the provider's token
// endpoint directly.
type TokenService interface {
	// GetValidTokens returns a credential that is not within the refresh
	// buffer of expiry, refreshing and persisting it if necessary. A
	// failure with code ErrReauthRequired means only a new OAuth grant can
	// recover; ErrProviderUnavailable means retry the whole operation
	// later.
	GetValidTokens(ctx context.Context, tenantID uuid.UUID) (*dto.TokenSet, *errors.AppError)
}

type tokenService struct {
	creds repository.CredentialRepository
	now   func() time.Time
}

func NewTokenService(creds repository.CredentialRepository) TokenService {
	return &tokenService{creds: creds, now: time.Now}
}

func (s *tokenService) GetValidTokens(ctx context.Context, tenantID uuid.UUID) (*dto.TokenSet, *errors.AppError) {
	cred, err := s.creds.GetCredential(ctx, tenantID, dto.ProviderGoogle)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load stored credential", err)
	}
	if cred == nil {
		return nil, errors.NewAppError(errors.ErrReauthRequired, "no stored credential for tenant", nil)
	}

	// A null expiry means the provider never told us; hand the token out
	// as-is and rely on the 401 path for revocation.
	if cred.ExpiresAt == nil || s.now().Add(constants.TokenRefreshBuffer).Before(*cred.ExpiresAt) {
		return tokenSetFromCredential(cred), nil
	}

	if cred.RefreshToken == nil || *cred.RefreshToken == "" {
		return nil, errors.NewAppError(errors.ErrReauthRequired, "token expired and no refresh token stored", nil)
	}

	logger.Info("TokenService:GetValidTokens:Refreshing", "tenant_id", tenantID)
	return s.refresh(ctx, cred)
}

func (s *tokenService) refresh(ctx context.Context, cred *entity.OAuthCredential) (*dto.TokenSet, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, errors.NewAppError(errors.ErrInternalServer, "config not initialized", nil)
	}

	endpoint := google.Endpoint
	if cfg.GoogleAPI.TokenURL != "" {
		endpoint = oauth2.Endpoint{TokenURL: cfg.GoogleAPI.TokenURL}
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleAPI.ClientID,
		ClientSecret: cfg.GoogleAPI.ClientSecret,
		Endpoint:     endpoint,
	}

	source := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: *cred.RefreshToken})
	newToken, err := source.Token()
	if err != nil {
		return nil, s.classifyRefreshFailure(cred.TenantID, err)
	}

	// Full replacement write: the provider may rotate the refresh token,
	// and a partial merge could pair mismatched halves.
	cred.AccessToken = newToken.AccessToken
	if newToken.RefreshToken != "" {
		rotated := newToken.RefreshToken
		cred.RefreshToken = &rotated
	}
	expiry := newToken.Expiry
	if expiry.IsZero() {
		expiry = s.now().Add(constants.DefaultTokenTTL)
	}
	cred.ExpiresAt = &expiry

	if err := s.creds.SaveCredential(ctx, cred); err != nil {
		logger.Error("TokenService:refresh:SaveCredential:Error", "error", err, "tenant_id", cred.TenantID)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to persist refreshed credential", err)
	}

	logger.Info("TokenService:refresh:Success", "tenant_id", cred.TenantID, "expires_at", expiry)
	return tokenSetFromCredential(cred), nil
}

// classifyRefreshFailure draws the line the whole failure contract rests
// on: 400/401 from the token endpoint means the refresh token itself is
// dead, everything else is transient.
func (s *tokenService) classifyRefreshFailure(tenantID uuid.UUID, err error) *errors.AppError {
	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		logger.Error("TokenService:refresh:ProviderError", "tenant_id", tenantID, "status", status, "error", retrieveErr.ErrorCode)
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return errors.NewAppError(errors.ErrReauthRequired, "refresh token rejected by provider", err)
		}
		return errors.NewAppError(errors.ErrProviderUnavailable, "token endpoint returned a server error", err)
	}

	logger.Error("TokenService:refresh:TransportError", "tenant_id", tenantID, "error", err)
	return errors.NewAppError(errors.ErrProviderUnavailable, "token refresh failed", err)
}

func tokenSetFromCredential(cred *entity.OAuthCredential) *dto.TokenSet {
	set := &dto.TokenSet{
		AccessToken: cred.AccessToken,
		Scope:       strings.Join(cred.Scopes, " "),
	}
	if cred.RefreshToken != nil {
		set.RefreshToken = *cred.RefreshToken
	}
	if cred.ExpiresAt != nil {
		set.ExpiresAt = *cred.ExpiresAt
	}
	return set
}
