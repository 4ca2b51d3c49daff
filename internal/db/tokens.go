package db

import (
	"context"

	"github.com/karac38/gdevapps-portal/internal/model"
)

func (r *repository) GetAllTokensByUserID(ctx context.Context, userID string) ([]model.UserToken, error) {
	query := `SELECT user_id, login_provider, name, value FROM user_tokens WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.UserToken
	for rows.Next() {
		var t model.UserToken
		if err := rows.Scan(&t.UserID, &t.LoginProvider, &t.Name, &t.Value); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}

// UpdateUserToken writes one token record, creating it when missing.
func (r *repository) UpdateUserToken(ctx context.Context, token model.UserToken) error {
	query := `INSERT INTO user_tokens (user_id, login_provider, name, value) VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value)`
	_, err := r.db.ExecContext(ctx, query, token.UserID, token.LoginProvider, token.Name, token.Value)
	return err
}
