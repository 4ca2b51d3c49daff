package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/fakes"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

func newSession() auth.Session {
	return auth.Session{
		UserID:       "teacher-1",
		RefreshToken: "refresh-1",
		Credential:   &oauth2.Token{AccessToken: "old"},
	}
}

// expiring answers ErrUnauthorized for every access token in expired.
func expiring(calls *[]string, expired ...string) auth.Op[string] {
	return func(_ context.Context, cred *oauth2.Token) (string, error) {
		*calls = append(*calls, cred.AccessToken)
		for _, e := range expired {
			if cred.AccessToken == e {
				return "", fmt.Errorf("sheets: %w", perrors.ErrUnauthorized)
			}
		}
		return "value-" + cred.AccessToken, nil
	}
}

func TestCallSuccessKeepsCredential(t *testing.T) {
	store := fakes.NewStore()
	refresher := &fakes.Refresher{Token: &oauth2.Token{AccessToken: "new"}}
	guard := auth.NewGuard(refresher, store)
	sess := newSession()

	var calls []string
	res, err := auth.Call(context.Background(), guard, sess, expiring(&calls))
	require.NoError(t, err)

	assert.Equal(t, "value-old", res.Value)
	assert.Same(t, sess.Credential, res.Credential)
	assert.Equal(t, []string{"old"}, calls)
	assert.Empty(t, refresher.Seen)
	assert.Empty(t, store.Tokens)
}

func TestCallRefreshesOnceAndPersists(t *testing.T) {
	store := fakes.NewStore()
	store.Tokens = []model.UserToken{
		{UserID: "teacher-1", LoginProvider: "Google", Name: model.TokenAccess, Value: "old"},
		{UserID: "teacher-1", LoginProvider: "Google", Name: model.TokenRefresh, Value: "refresh-1"},
	}
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	refresher := &fakes.Refresher{Token: &oauth2.Token{AccessToken: "new", Expiry: expiry}}
	guard := auth.NewGuard(refresher, store)

	var calls []string
	res, err := auth.Call(context.Background(), guard, newSession(), expiring(&calls, "old"))
	require.NoError(t, err)

	assert.Equal(t, "value-new", res.Value)
	assert.Equal(t, "new", res.Credential.AccessToken)
	assert.Equal(t, "refresh-1", res.Credential.RefreshToken, "refresh token carried over")
	assert.Equal(t, []string{"old", "new"}, calls)
	assert.Equal(t, []string{"refresh-1"}, refresher.Seen)

	assert.Equal(t, "new", store.Token("teacher-1", model.TokenAccess))
	assert.Equal(t, "2026-03-01T12:00:00Z", store.Token("teacher-1", model.TokenExpiresAt))
	assert.Equal(t, "true", store.Token("teacher-1", model.TokenUpdated))
	assert.NotEmpty(t, store.Token("teacher-1", model.TokenUpdatedTime))
	assert.Equal(t, "refresh-1", store.Token("teacher-1", model.TokenRefresh))
}

func TestCallRetryFailureKeepsRefreshedCredential(t *testing.T) {
	tests := []struct {
		name     string
		retryErr error
	}{
		{name: "unauthorized again", retryErr: fmt.Errorf("sheets: %w", perrors.ErrUnauthorized)},
		{name: "server error", retryErr: perrors.NewRetryableError(errors.New("503"), "get values")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := fakes.NewStore()
			refresher := &fakes.Refresher{Token: &oauth2.Token{AccessToken: "new"}}
			guard := auth.NewGuard(refresher, store)

			var calls []string
			res, err := auth.Call(context.Background(), guard, newSession(), func(_ context.Context, cred *oauth2.Token) (string, error) {
				calls = append(calls, cred.AccessToken)
				if cred.AccessToken == "old" {
					return "", fmt.Errorf("sheets: %w", perrors.ErrUnauthorized)
				}
				return "", tt.retryErr
			})
			require.Error(t, err)

			assert.ErrorIs(t, err, tt.retryErr)
			assert.Equal(t, []string{"old", "new"}, calls, "exactly one retry")
			assert.Len(t, refresher.Seen, 1)
			assert.Equal(t, "new", res.Credential.AccessToken)
			assert.Equal(t, "new", store.Token("teacher-1", model.TokenAccess), "refreshed credential saved before the retry")
			assert.Equal(t, "true", store.Token("teacher-1", model.TokenUpdated))
		})
	}
}

func TestCallRefreshFailure(t *testing.T) {
	guard := auth.NewGuard(&fakes.Refresher{Err: errors.New("invalid_grant")}, fakes.NewStore())

	var calls []string
	res, err := auth.Call(context.Background(), guard, newSession(), expiring(&calls, "old"))
	require.Error(t, err)

	assert.True(t, errors.Is(err, perrors.ErrUnauthorized))
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, []string{"old"}, calls)
	assert.Equal(t, "old", res.Credential.AccessToken)
}

func TestCallOtherErrorsPassThrough(t *testing.T) {
	refresher := &fakes.Refresher{Token: &oauth2.Token{AccessToken: "new"}}
	guard := auth.NewGuard(refresher, fakes.NewStore())
	boom := perrors.NewRetryableError(errors.New("503"), "get values")

	calls := 0
	_, err := auth.Call(context.Background(), guard, newSession(), func(context.Context, *oauth2.Token) (int, error) {
		calls++
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.True(t, perrors.IsRetryable(err))
	assert.Equal(t, 1, calls)
	assert.Empty(t, refresher.Seen)
}

func TestCallPersistFailureIsNotFatal(t *testing.T) {
	store := fakes.NewStore()
	store.FailTokenUpdate = errors.New("db down")
	guard := auth.NewGuard(&fakes.Refresher{Token: &oauth2.Token{AccessToken: "new"}}, store)

	var calls []string
	res, err := auth.Call(context.Background(), guard, newSession(), expiring(&calls, "old"))
	require.NoError(t, err)
	assert.Equal(t, "value-new", res.Value)
	assert.Equal(t, "new", res.Credential.AccessToken)
}

func TestDo(t *testing.T) {
	guard := auth.NewGuard(&fakes.Refresher{Token: &oauth2.Token{AccessToken: "new"}}, fakes.NewStore())

	var seen []string
	cred, err := auth.Do(context.Background(), guard, newSession(), func(_ context.Context, cred *oauth2.Token) error {
		seen = append(seen, cred.AccessToken)
		if cred.AccessToken == "old" {
			return perrors.ErrUnauthorized
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", cred.AccessToken)
	assert.Equal(t, []string{"old", "new"}, seen)
}
