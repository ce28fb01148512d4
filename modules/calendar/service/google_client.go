package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wedsync-api/core/config"
	"wedsync-api/core/constants"
	"wedsync-api/core/errors"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/dto"

	"github.com/google/uuid"
)

const googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"

// ListEventsQuery bounds a pull-phase listing.
type ListEventsQuery struct {
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int
}

// GoogleCalendarAPI is the provider surface the sync engine consumes.
// Every method resolves credentials through the token service first and
// returns the shared failure taxonomy, so the engine never needs
// provider-specific error handling.
type GoogleCalendarAPI interface {
	ListCalendars(ctx context.Context, tenantID uuid.UUID) ([]dto.GoogleCalendar, *errors.AppError)
	ListEvents(ctx context.Context, tenantID uuid.UUID, calendarID string, q ListEventsQuery) ([]dto.GoogleEvent, *errors.AppError)
	CreateEvent(ctx context.Context, tenantID uuid.UUID, calendarID string, event dto.GoogleEvent) (*dto.GoogleEvent, *errors.AppError)
	UpdateEvent(ctx context.Context, tenantID uuid.UUID, calendarID string, eventID string, patch dto.GoogleEvent) (*dto.GoogleEvent, *errors.AppError)
	DeleteEvent(ctx context.Context, tenantID uuid.UUID, calendarID string, eventID string) *errors.AppError
	CreateCalendar(ctx context.Context, tenantID uuid.UUID, name string) (*dto.GoogleCalendar, *errors.AppError)
}

type googleClient struct {
	tokens TokenService
	http   *http.Client
}

func NewGoogleClient(tokens TokenService) GoogleCalendarAPI {
	return &googleClient{
		tokens: tokens,
		http:   &http.Client{Timeout: constants.HTTPClientTimeout},
	}
}

func (c *googleClient) baseURL() string {
	if cfg, ok := config.GetSafe(); ok && cfg.GoogleAPI.CalendarBaseURL != "" {
		return cfg.GoogleAPI.CalendarBaseURL
	}
	return googleCalendarAPIBase
}

func (c *googleClient) ListCalendars(ctx context.Context, tenantID uuid.UUID) ([]dto.GoogleCalendar, *errors.AppError) {
	var list dto.GoogleCalendarList
	apiURL := c.baseURL() + "/users/me/calendarList"
	if appErr := c.doJSON(ctx, tenantID, http.MethodGet, apiURL, nil, &list); appErr != nil {
		return nil, appErr
	}
	return list.Items, nil
}

func (c *googleClient) ListEvents(ctx context.Context, tenantID uuid.UUID, calendarID string, q ListEventsQuery) ([]dto.GoogleEvent, *errors.AppError) {
	base := fmt.Sprintf("%s/calendars/%s/events", c.baseURL(), url.PathEscape(calendarID))

	params := url.Values{}
	params.Set("singleEvents", "true")
	params.Set("timeMin", q.TimeMin.Format(time.RFC3339))
	params.Set("timeMax", q.TimeMax.Format(time.RFC3339))
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = constants.SyncMaxResults
	}
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))

	var events []dto.GoogleEvent
	pageToken := ""
	for {
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var page dto.GoogleEventList
		if appErr := c.doJSON(ctx, tenantID, http.MethodGet, base+"?"+params.Encode(), nil, &page); appErr != nil {
			return nil, appErr
		}
		events = append(events, page.Items...)
		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *googleClient) CreateEvent(ctx context.Context, tenantID uuid.UUID, calendarID string, event dto.GoogleEvent) (*dto.GoogleEvent, *errors.AppError) {
	apiURL := fmt.Sprintf("%s/calendars/%s/events", c.baseURL(), url.PathEscape(calendarID))
	var created dto.GoogleEvent
	if appErr := c.doJSON(ctx, tenantID, http.MethodPost, apiURL, &event, &created); appErr != nil {
		return nil, appErr
	}
	return &created, nil
}

// UpdateEvent issues a PATCH, so unset fields keep their remote values.
func (c *googleClient) UpdateEvent(ctx context.Context, tenantID uuid.UUID, calendarID string, eventID string, patch dto.GoogleEvent) (*dto.GoogleEvent, *errors.AppError) {
	apiURL := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL(), url.PathEscape(calendarID), url.PathEscape(eventID))
	var updated dto.GoogleEvent
	if appErr := c.doJSON(ctx, tenantID, http.MethodPatch, apiURL, &patch, &updated); appErr != nil {
		return nil, appErr
	}
	return &updated, nil
}

// DeleteEvent treats an already-gone event (404/410) as success so that
// deletion stays idempotent across overlapping runs.
func (c *googleClient) DeleteEvent(ctx context.Context, tenantID uuid.UUID, calendarID string, eventID string) *errors.AppError {
	apiURL := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL(), url.PathEscape(calendarID), url.PathEscape(eventID))
	appErr := c.doJSON(ctx, tenantID, http.MethodDelete, apiURL, nil, nil)
	if appErr != nil && appErr.Code == errors.ErrProviderAPI && (appErr.HTTPStatus == http.StatusNotFound || appErr.HTTPStatus == http.StatusGone) {
		return nil
	}
	return appErr
}

func (c *googleClient) CreateCalendar(ctx context.Context, tenantID uuid.UUID, name string) (*dto.GoogleCalendar, *errors.AppError) {
	apiURL := c.baseURL() + "/calendars"
	body := map[string]string{"summary": name}
	var created dto.GoogleCalendar
	if appErr := c.doJSON(ctx, tenantID, http.MethodPost, apiURL, body, &created); appErr != nil {
		return nil, appErr
	}
	return &created, nil
}

// doJSON resolves credentials, issues the request with bounded retries for
// transient failures, and classifies the response.
func (c *googleClient) doJSON(ctx context.Context, tenantID uuid.UUID, method, apiURL string, body any, dest any) *errors.AppError {
	tokens, appErr := c.tokens.GetValidTokens(ctx, tenantID)
	if appErr != nil {
		return appErr
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "failed to encode request body", err)
		}
	}

	backoff := constants.ProviderInitialBackoff
	var lastErr *errors.AppError
	for attempt := 1; attempt <= constants.ProviderMaxAttempts; attempt++ {
		lastErr = c.attempt(ctx, tokens.AccessToken, method, apiURL, payload, dest)
		if lastErr == nil || !errors.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == constants.ProviderMaxAttempts {
			break
		}
		logger.Warn("GoogleClient:doJSON:Retry",
			"tenant_id", tenantID, "method", method, "attempt", attempt, "error", lastErr.Message)

		select {
		case <-ctx.Done():
			return errors.NewAppError(errors.ErrProviderUnavailable, "request cancelled", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func (c *googleClient) attempt(ctx context.Context, accessToken, method, apiURL string, payload []byte, dest any) *errors.AppError {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewAppError(errors.ErrProviderUnavailable, "provider request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if dest == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return errors.NewAppError(errors.ErrProviderAPI, "failed to parse provider response", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		// The token looked fresh but the provider disagrees: revoked
		// server-side between the freshness check and this call.
		return errors.NewAppError(errors.ErrReauthRequired, "provider rejected access token", nil)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("provider returned %d", resp.StatusCode), nil)
	default:
		raw, _ := io.ReadAll(resp.Body)
		appErr := errors.NewAppError(errors.ErrProviderAPI, providerErrorMessage(resp.StatusCode, raw), nil)
		appErr.HTTPStatus = resp.StatusCode
		return appErr
	}
}

func providerErrorMessage(status int, raw []byte) string {
	var parsed dto.GoogleErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Sprintf("provider error %d: %s", status, parsed.Error.Message)
	}
	return fmt.Sprintf("provider error %d", status)
}
