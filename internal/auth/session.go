package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/pkg/errors"

	"golang.org/x/oauth2"
)

const DefaultLoginProvider = "Google"

// Session is the identity a request acts as: the portal user, their current
// Google credential and the refresh token used to renew it.
type Session struct {
	UserID       string
	RefreshToken string
	Credential   *oauth2.Token
}

// With returns s carrying cred. Use it to adopt the credential of a Result.
func (s Session) With(cred *oauth2.Token) Session {
	if cred != nil {
		s.Credential = cred
	}
	return s
}

// LoadSession builds a session from the user's stored login tokens.
func LoadSession(ctx context.Context, store TokenStore, userID string) (Session, error) {
	tokens, err := store.GetAllTokensByUserID(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load tokens for user %s: %w", userID, err)
	}

	values := make(map[string]string, len(tokens))
	for _, t := range tokens {
		values[t.Name] = t.Value
	}

	if values[model.TokenAccess] == "" && values[model.TokenRefresh] == "" {
		return Session{}, fmt.Errorf("%w: no stored credential for user %s", errors.ErrUnauthorized, userID)
	}

	cred := &oauth2.Token{
		AccessToken:  values[model.TokenAccess],
		RefreshToken: values[model.TokenRefresh],
		TokenType:    "Bearer",
	}
	if exp, err := time.Parse(time.RFC3339, values[model.TokenExpiresAt]); err == nil {
		cred.Expiry = exp
	}

	return Session{
		UserID:       userID,
		RefreshToken: values[model.TokenRefresh],
		Credential:   cred,
	}, nil
}
