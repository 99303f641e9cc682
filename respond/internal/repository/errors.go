package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssetGroupNotFound = errors.New("asset group not found")
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrIndicatorNotFound  = errors.New("indicator not found")
	ErrLinkNotFound       = errors.New("indicator link not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrTokenNotFound      = errors.New("token not found")

	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrCompanyExists  = errors.New("company registration code already exists")

	// ErrReferenceNotFound is a foreign key violation: a referenced row does not exist.
	ErrReferenceNotFound = errors.New("referenced entity not found")
)

// PostgreSQL error codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// uniqueSentinels maps unique constraint names to their sentinel errors.
var uniqueSentinels = map[string]error{
	"users_username_key": ErrUsernameExists,
	"users_email_key":    ErrEmailExists,
	"company_cin_key":    ErrCompanyExists,
}

// mapError converts pgx errors into repository sentinels. notFound is
// returned (wrapped) for pgx.ErrNoRows.
func mapError(err error, entity string, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", entity, err)
	}

	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if sentinel, ok := uniqueSentinels[pgErr.ConstraintName]; ok {
				return sentinel
			}
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", entity, ErrReferenceNotFound, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w", entity, err)
}
