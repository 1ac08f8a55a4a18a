// Package users provides the PostgreSQL-backed user repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `SELECT id, email, wallet_address, encrypted_api_key, created_at, updated_at FROM users`

// Create inserts user. A clash on email or wallet returns
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, wallet_address)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.WalletAddress).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE lower(wallet_address) = lower($1)`, walletAddress)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE lower(email) = lower($1)`, email)
}

// SetEncryptedAPIKey stores token, or clears the column when token is nil.
func (r *PostgresRepository) SetEncryptedAPIKey(ctx context.Context, id string, token *string) error {
	query :=
		`UPDATE users SET encrypted_api_key = $2, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var apiKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.WalletAddress, &apiKey, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if apiKey.Valid {
		user.EncryptedAPIKey = &apiKey.String
	}
	return user, nil
}
