package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

// TokenRepo is the token whitelist. A token is valid only while its row exists.
type TokenRepo struct{ base }

func NewTokenRepo(pool database.Querier) *TokenRepo {
	return &TokenRepo{base{pool}}
}

// Save whitelists token for userID.
func (r *TokenRepo) Save(ctx context.Context, token string, userID int64) error {
	_, err := execute(ctx, r.q(ctx), psql.Insert("token_whitelist").
		Columns("token", "user_id").
		Values(token, userID))
	return mapError(err, "save token", nil)
}

// Find returns ErrTokenNotFound when token was never issued or has been revoked.
func (r *TokenRepo) Find(ctx context.Context, token string) (*models.WhitelistedToken, error) {
	b := psql.Select("id", "token", "user_id", "created_at").
		From("token_whitelist").
		Where(sq.Eq{"token": token}).
		Limit(1)
	out, err := selectOne[models.WhitelistedToken](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "find token", ErrTokenNotFound)
	}
	return out, nil
}

// Delete revokes token and returns the number of rows removed.
func (r *TokenRepo) Delete(ctx context.Context, token string) (int64, error) {
	n, err := execute(ctx, r.q(ctx), psql.Delete("token_whitelist").Where(sq.Eq{"token": token}))
	if err != nil {
		return 0, mapError(err, "delete token", nil)
	}
	return n, nil
}

// DeleteIssuedBefore removes whitelist rows created before cutoff.
func (r *TokenRepo) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := execute(ctx, r.q(ctx), psql.Delete("token_whitelist").Where(sq.Lt{"created_at": cutoff}))
	if err != nil {
		return 0, mapError(err, "prune tokens", nil)
	}
	return n, nil
}
