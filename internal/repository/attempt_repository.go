package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"
	"wikiquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

// CreateAttempt inserts a scored attempt and returns its generated ID.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) (string, error) {
	m, err := attemptDomainToModel(attempt)
	if err != nil {
		return "", err
	}

	m.ID = util.NewULID()
	m.CreatedAt = time.Now()

	query := `INSERT INTO quiz_attempts (id, quiz_id, user_id, score, total_questions, time_taken_seconds, total_time_seconds, answers, created_at)
	          VALUES (:ID, :QUIZ_ID, :USER_ID, :SCORE, :TOTAL_QUESTIONS, :TIME_TAKEN_SECONDS, :TOTAL_TIME_SECONDS, :ANSWERS, :CREATED_AT)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return "", fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return m.ID, nil
}

// ListAttemptsForUser returns the user's attempts, newest first.
func (r *sqlxAttemptRepository) ListAttemptsForUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	var rows []models.QuizAttempt
	query := `SELECT * FROM quiz_attempts WHERE user_id = :user_id ORDER BY created_at DESC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for ListAttemptsForUser: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"user_id": userID}
	if err := stmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}

	attempts := make([]domain.QuizAttempt, 0, len(rows))
	for i := range rows {
		attempt, err := attemptModelToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *attempt)
	}
	return attempts, nil
}

func attemptDomainToModel(attempt *domain.QuizAttempt) (*models.QuizAttempt, error) {
	var answers sql.NullString
	if len(attempt.Answers) > 0 {
		encoded, err := json.Marshal(attempt.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attempt answers: %w", err)
		}
		answers = sql.NullString{String: string(encoded), Valid: true}
	}

	return &models.QuizAttempt{
		QuizID:           attempt.QuizID,
		UserID:           attempt.UserID,
		Score:            attempt.Score,
		TotalQuestions:   attempt.TotalQuestions,
		TimeTakenSeconds: sql.NullInt64{Int64: int64(attempt.TimeTakenSeconds), Valid: attempt.TimeTakenSeconds > 0},
		TotalTimeSeconds: sql.NullInt64{Int64: int64(attempt.TotalTimeSeconds), Valid: attempt.TotalTimeSeconds > 0},
		Answers:          answers,
	}, nil
}

func attemptModelToDomain(m *models.QuizAttempt) (*domain.QuizAttempt, error) {
	answers := map[string]string{}
	if m.Answers.Valid && m.Answers.String != "" {
		if err := json.Unmarshal([]byte(m.Answers.String), &answers); err != nil {
			return nil, fmt.Errorf("failed to decode attempt answers: %w", err)
		}
	}

	return &domain.QuizAttempt{
		ID:               m.ID,
		QuizID:           m.QuizID,
		UserID:           m.UserID,
		Score:            m.Score,
		TotalQuestions:   m.TotalQuestions,
		TimeTakenSeconds: int(m.TimeTakenSeconds.Int64),
		TotalTimeSeconds: int(m.TotalTimeSeconds.Int64),
		Answers:          answers,
		CreatedAt:        m.CreatedAt,
	}, nil
}
