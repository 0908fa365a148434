package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"
	"wikiquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

// GetByURLAndUser retrieves the quiz stored for a (url, user) pair.
// Returns nil, nil when no quiz exists.
func (r *sqlxQuizRepository) GetByURLAndUser(ctx context.Context, url, userID string) (*domain.QuizRecord, error) {
	var m models.Quiz
	query := `SELECT * FROM quizzes WHERE url = :url AND user_id = :user_id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetByURLAndUser: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"url": url, "user_id": userID}
	err = stmt.GetContext(ctx, &m, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by url and user: %w", err)
	}
	return quizModelToDomain(&m)
}

// GetByID retrieves a quiz by its ID regardless of owner.
// Returns nil, nil when no quiz exists.
func (r *sqlxQuizRepository) GetByID(ctx context.Context, id string) (*domain.QuizRecord, error) {
	var m models.Quiz
	query := `SELECT * FROM quizzes WHERE id = :id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetByID: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"id": id}
	err = stmt.GetContext(ctx, &m, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}
	return quizModelToDomain(&m)
}

// GetByIDAndUser retrieves a quiz by ID, scoped to its owner.
// Returns nil, nil when no quiz exists for that user.
func (r *sqlxQuizRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.QuizRecord, error) {
	var m models.Quiz
	query := `SELECT * FROM quizzes WHERE id = :id AND user_id = :user_id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetByIDAndUser: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"id": id, "user_id": userID}
	err = stmt.GetContext(ctx, &m, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id and user: %w", err)
	}
	return quizModelToDomain(&m)
}

// Create inserts a new quiz row and returns its generated ID. A unique
// constraint violation on (url, user_id) surfaces as an error; callers
// resolve the race by re-reading and updating the winning row.
func (r *sqlxQuizRepository) Create(ctx context.Context, record *domain.QuizRecord) (string, error) {
	m, err := quizDomainToModel(record)
	if err != nil {
		return "", err
	}

	m.ID = util.NewULID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	query := `INSERT INTO quizzes (id, url, title, user_id, scraped_html, scraped_text, payload, created_at, updated_at)
	          VALUES (:ID, :URL, :TITLE, :USER_ID, :SCRAPED_HTML, :SCRAPED_TEXT, :PAYLOAD, :CREATED_AT, :UPDATED_AT)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return "", fmt.Errorf("failed to create quiz: %w", err)
	}
	return m.ID, nil
}

// Update replaces the stored content of an existing quiz row.
func (r *sqlxQuizRepository) Update(ctx context.Context, record *domain.QuizRecord) error {
	m, err := quizDomainToModel(record)
	if err != nil {
		return err
	}

	m.ID = record.ID
	m.UpdatedAt = time.Now()

	query := `UPDATE quizzes SET
	            title = :TITLE,
	            scraped_html = :SCRAPED_HTML,
	            scraped_text = :SCRAPED_TEXT,
	            payload = :PAYLOAD,
	            updated_at = :UPDATED_AT
	          WHERE id = :ID AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
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

// ListHistoryForUser returns the user's quizzes, newest first.
func (r *sqlxQuizRepository) ListHistoryForUser(ctx context.Context, userID string) ([]domain.QuizHistoryItem, error) {
	var rows []models.Quiz
	query := `SELECT * FROM quizzes WHERE user_id = :user_id AND deleted_at IS NULL ORDER BY created_at DESC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for ListHistoryForUser: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"user_id": userID}
	if err := stmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, fmt.Errorf("failed to list quiz history: %w", err)
	}

	history := make([]domain.QuizHistoryItem, 0, len(rows))
	for _, m := range rows {
		history = append(history, domain.QuizHistoryItem{
			ID:            m.ID,
			URL:           m.URL,
			Title:         m.Title,
			DateGenerated: m.CreatedAt,
		})
	}
	return history, nil
}

func quizModelToDomain(m *models.Quiz) (*domain.QuizRecord, error) {
	var payload domain.QuizPayload
	if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode stored quiz payload: %w", err)
	}
	payload.ID = m.ID

	return &domain.QuizRecord{
		ID:          m.ID,
		URL:         m.URL,
		Title:       m.Title,
		UserID:      m.UserID,
		ScrapedHTML: m.ScrapedHTML.String,
		ScrapedText: m.ScrapedText.String,
		Payload:     &payload,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func quizDomainToModel(record *domain.QuizRecord) (*models.Quiz, error) {
	if record.Payload == nil {
		return nil, fmt.Errorf("quiz record has no payload")
	}
	payloadJSON, err := json.Marshal(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz payload: %w", err)
	}

	return &models.Quiz{
		URL:         record.URL,
		Title:       record.Title,
		UserID:      record.UserID,
		ScrapedHTML: sql.NullString{String: record.ScrapedHTML, Valid: record.ScrapedHTML != ""},
		ScrapedText: sql.NullString{String: record.ScrapedText, Valid: record.ScrapedText != ""},
		Payload:     string(payloadJSON),
	}, nil
}
