package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wedsync-api/core/config"
	"wedsync-api/core/errors"
	"wedsync-api/modules/calendar/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokenService struct {
	set    *dto.TokenSet
	appErr *errors.AppError
}

func (s *staticTokenService) GetValidTokens(_ context.Context, _ uuid.UUID) (*dto.TokenSet, *errors.AppError) {
	return s.set, s.appErr
}

func newTestGoogleClient(baseURL string) GoogleCalendarAPI {
	config.Set(&config.Config{
		GoogleAPI: config.GoogleAPIConfig{CalendarBaseURL: baseURL},
		JWT:       config.JWTConfig{Secret: "test-secret"},
	})
	return NewGoogleClient(&staticTokenService{set: &dto.TokenSet{AccessToken: "access-token"}})
}

func TestGoogleClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	_, appErr := client.ListCalendars(context.Background(), uuid.New())

	require.Nil(t, appErr)
	assert.Equal(t, "Bearer access-token", gotAuth)
}

func TestGoogleClient_TokenFailureSkipsHTTPCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	config.Set(&config.Config{
		GoogleAPI: config.GoogleAPIConfig{CalendarBaseURL: server.URL},
		JWT:       config.JWTConfig{Secret: "test-secret"},
	})
	client := NewGoogleClient(&staticTokenService{
		appErr: errors.NewAppError(errors.ErrReauthRequired, "no stored credential for tenant", nil),
	})

	_, appErr := client.ListCalendars(context.Background(), uuid.New())

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrReauthRequired, appErr.Code)
	assert.False(t, called)
}

func TestGoogleClient_UnauthorizedMeansReauth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	_, appErr := client.CreateEvent(context.Background(), uuid.New(), "cal-1", dto.GoogleEvent{Summary: "Cake tasting"})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrReauthRequired, appErr.Code)
}

func TestGoogleClient_DeleteGoneEventIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	appErr := client.DeleteEvent(context.Background(), uuid.New(), "cal-1", "gcal-42")

	assert.Nil(t, appErr)
}

func TestGoogleClient_DeleteNoContentIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	appErr := client.DeleteEvent(context.Background(), uuid.New(), "cal-1", "gcal-42")

	assert.Nil(t, appErr)
}

func TestGoogleClient_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"gcal-7","summary":"Venue walkthrough"}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	created, appErr := client.CreateEvent(context.Background(), uuid.New(), "cal-1", dto.GoogleEvent{Summary: "Venue walkthrough"})

	require.Nil(t, appErr)
	assert.Equal(t, "gcal-7", created.ID)
	assert.Equal(t, 2, attempts)
}

func TestGoogleClient_PersistentOutageIsTransientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	started := time.Now()
	_, appErr := client.CreateEvent(context.Background(), uuid.New(), "cal-1", dto.GoogleEvent{Summary: "Florist"})
	elapsed := time.Since(started)

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrProviderUnavailable, appErr.Code)
	assert.Equal(t, 3, attempts)
	// Two backoff waits between three attempts, none after the last one.
	assert.Less(t, elapsed, 3*time.Second)
}

func TestGoogleClient_ClientErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Rate Limit Exceeded"}}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	_, appErr := client.CreateEvent(context.Background(), uuid.New(), "cal-1", dto.GoogleEvent{Summary: "Caterer"})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrProviderAPI, appErr.Code)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	assert.Contains(t, appErr.Message, "Rate Limit Exceeded")
	assert.Equal(t, 1, attempts)
}

func TestGoogleClient_ListEventsFollowsPagination(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.NotEmpty(t, r.URL.Query().Get("timeMin"))
		assert.NotEmpty(t, r.URL.Query().Get("timeMax"))

		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"items":[{"id":"gcal-1"}],"nextPageToken":"page-2"}`))
			return
		}
		w.Write([]byte(`{"items":[{"id":"gcal-2"}]}`))
	}))
	defer server.Close()

	client := newTestGoogleClient(server.URL)
	events, appErr := client.ListEvents(context.Background(), uuid.New(), "cal-1", ListEventsQuery{
		TimeMin: time.Now().AddDate(-2, 0, 0),
		TimeMax: time.Now().AddDate(2, 0, 0),
	})

	require.Nil(t, appErr)
	require.Len(t, events, 2)
	assert.Equal(t, "gcal-1", events[0].ID)
	assert.Equal(t, "gcal-2", events[1].ID)
	assert.Equal(t, 2, requests)
}
