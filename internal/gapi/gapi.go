// Package gapi holds what the Google API adapters share: client options for a
// caller credential and classification of API errors.
package gapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/karac38/gdevapps-portal/internal/config"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ClientOptions authenticates a Google API client with exactly cred. The
// token source is static so an expired credential surfaces as a 401 instead
// of being renewed behind the caller's back.
func ClientOptions(cfg *config.Config, cred *oauth2.Token) []option.ClientOption {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(cred)),
	}
	if cfg != nil && cfg.Google.ApplicationName != "" {
		opts = append(opts, option.WithUserAgent(cfg.Google.ApplicationName))
	}
	return opts
}

// Classify maps a Google API failure onto the portal's error taxonomy:
// 401 becomes ErrUnauthorized, 404 ErrNotFound, 429 and 5xx RetryableError.
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%s: %w: %w", op, perrors.ErrUnauthorized, err)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return perrors.NewRetryableError(err, op)
	}

	switch {
	case gerr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %w", op, perrors.ErrUnauthorized, err)
	case gerr.Code == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", op, perrors.ErrNotFound, err)
	case gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError:
		return perrors.NewRetryableError(err, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
