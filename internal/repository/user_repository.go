package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"
	"wikiquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// Create inserts a new user. The caller may pre-set the ID; an empty ID
// gets a fresh ULID.
func (r *sqlxUserRepository) Create(ctx context.Context, user *domain.User) error {
	m := userDomainToModel(user)
	if m.ID == "" {
		m.ID = util.NewULID()
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	query := `INSERT INTO users (id, google_id, email, name, profile_picture_url, encrypted_refresh_token, created_at, updated_at)
	          VALUES (:ID, :GOOGLE_ID, :EMAIL, :NAME, :PROFILE_PICTURE_URL, :ENCRYPTED_REFRESH_TOKEN, :CREATED_AT, :UPDATED_AT)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByGoogleID retrieves a user by their Google ID.
// Returns nil, nil when no user exists.
func (r *sqlxUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	var m models.User
	query := `SELECT * FROM users WHERE google_id = :google_id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetByGoogleID: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"google_id": googleID}
	err = stmt.GetContext(ctx, &m, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by google_id: %w", err)
	}
	return userModelToDomain(&m), nil
}

// GetByID retrieves a user by their internal ID.
// Returns nil, nil when no user exists.
func (r *sqlxUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	var m models.User
	query := `SELECT * FROM users WHERE id = :id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetByID: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"id": userID}
	err = stmt.GetContext(ctx, &m, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return userModelToDomain(&m), nil
}

// Update refreshes a user's profile and token fields.
func (r *sqlxUserRepository) Update(ctx context.Context, user *domain.User) error {
	m := userDomainToModel(user)
	m.ID = user.ID
	m.UpdatedAt = time.Now()

	query := `UPDATE users SET
	            email = :EMAIL,
	            name = :NAME,
	            profile_picture_url = :PROFILE_PICTURE_URL,
	            encrypted_refresh_token = :ENCRYPTED_REFRESH_TOKEN,
	            updated_at = :UPDATED_AT
	          WHERE id = :ID AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func userDomainToModel(user *domain.User) *models.User {
	return &models.User{
		ID:                    user.ID,
		GoogleID:              user.GoogleID,
		Email:                 user.Email,
		Name:                  sql.NullString{String: user.Name, Valid: user.Name != ""},
		ProfilePictureURL:     sql.NullString{String: user.ProfileImageURL, Valid: user.ProfileImageURL != ""},
		EncryptedRefreshToken: sql.NullString{String: user.EncryptedRefToken, Valid: user.EncryptedRefToken != ""},
	}
}

func userModelToDomain(m *models.User) *domain.User {
	return &domain.User{
		ID:                m.ID,
		GoogleID:          m.GoogleID,
		Email:             m.Email,
		Name:              m.Name.String,
		ProfileImageURL:   m.ProfilePictureURL.String,
		EncryptedRefToken: m.EncryptedRefreshToken.String,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
