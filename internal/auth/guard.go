package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Result pairs an operation's value with the credential that produced it.
// Callers must continue with Credential; it differs from the one passed in
// after a refresh.
type Result[T any] struct {
	Value      T
	Credential *oauth2.Token
}

// Op is a remote call made with a specific credential.
type Op[T any] func(ctx context.Context, cred *oauth2.Token) (T, error)

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type TokenStore interface {
	GetAllTokensByUserID(ctx context.Context, userID string) ([]model.UserToken, error)
	UpdateUserToken(ctx context.Context, token model.UserToken) error
}

// Guard re-authenticates once when a remote call reports an expired credential.
type Guard struct {
	refresher Refresher
	store     TokenStore
	now       func() time.Time
	log       zerolog.Logger
}

func NewGuard(refresher Refresher, store TokenStore) *Guard {
	return &Guard{
		refresher: refresher,
		store:     store,
		now:       time.Now,
		log:       logger.Get(),
	}
}

// Call runs op with the session credential. On ErrUnauthorized it refreshes
// the credential with the session's refresh token, persists it and re-issues
// op exactly once. Any other failure, or a second failure after the refresh,
// is returned to the caller.
func Call[T any](ctx context.Context, g *Guard, s Session, op Op[T]) (Result[T], error) {
	v, err := op(ctx, s.Credential)
	if err == nil {
		return Result[T]{Value: v, Credential: s.Credential}, nil
	}
	if !errors.Is(err, perrors.ErrUnauthorized) {
		return Result[T]{Credential: s.Credential}, err
	}

	log := g.log.With().Str("user_id", s.UserID).Logger()
	log.Warn().Err(err).Msg("Credential expired, refreshing and retrying")

	fresh, rerr := g.refresher.Refresh(ctx, s.RefreshToken)
	if rerr != nil {
		log.Error().Err(rerr).Msg("Failed to refresh credential")
		return Result[T]{Credential: s.Credential}, fmt.Errorf("%w: refresh failed: %w", perrors.ErrUnauthorized, rerr)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.RefreshToken
	}

	if perr := g.persist(ctx, s.UserID, fresh); perr != nil {
		log.Error().Err(perr).Msg("Failed to persist refreshed credential")
	} else {
		log.Debug().Time("expires_at", fresh.Expiry).Msg("Refreshed credential persisted")
	}

	v, err = op(ctx, fresh)
	if err != nil {
		log.Error().Err(err).Msg("Call failed after credential refresh")
		return Result[T]{Credential: fresh}, fmt.Errorf("retry after refresh: %w", err)
	}

	return Result[T]{Value: v, Credential: fresh}, nil
}

// Do is Call for operations without a value.
func Do(ctx context.Context, g *Guard, s Session, op func(ctx context.Context, cred *oauth2.Token) error) (*oauth2.Token, error) {
	res, err := Call(ctx, g, s, func(ctx context.Context, cred *oauth2.Token) (struct{}, error) {
		return struct{}{}, op(ctx, cred)
	})
	return res.Credential, err
}

func (g *Guard) persist(ctx context.Context, userID string, tok *oauth2.Token) error {
	existing, err := g.store.GetAllTokensByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}

	provider := DefaultLoginProvider
	if len(existing) > 0 && existing[0].LoginProvider != "" {
		provider = existing[0].LoginProvider
	}

	records := []model.UserToken{
		{Name: model.TokenAccess, Value: tok.AccessToken},
		{Name: model.TokenUpdated, Value: "true"},
		{Name: model.TokenUpdatedTime, Value: g.now().UTC().Format(time.RFC3339)},
	}
	if !tok.Expiry.IsZero() {
		records = append(records, model.UserToken{Name: model.TokenExpiresAt, Value: tok.Expiry.UTC().Format(time.RFC3339)})
	}

	for _, r := range records {
		r.UserID = userID
		r.LoginProvider = provider
		if err := g.store.UpdateUserToken(ctx, r); err != nil {
			return fmt.Errorf("failed to update token %s: %w", r.Name, err)
		}
	}
	return nil
}
