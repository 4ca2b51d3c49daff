package auth

import (
	"context"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested for teacher accounts.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveScope,
	classroom.ClassroomCoursesReadonlyScope,
}

// OAuthRefresher exchanges a refresh token at Google's token endpoint.
type OAuthRefresher struct {
	oauth *oauth2.Config
}

func NewOAuthRefresher(cfg *config.Config) *OAuthRefresher {
	return &OAuthRefresher{
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
	}
}

func (r *OAuthRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token")
	}

	tok, err := r.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return tok, nil
}
