package models

import (
	"database/sql"
	"time"
)

// Quiz represents a persisted quiz row. One row exists per (url, user_id)
// pair; the payload column holds the full generated quiz as a JSON CLOB.
type Quiz struct {
	ID          string         `db:"ID"`           // ULID
	URL         string         `db:"URL"`          // Source Wikipedia article URL
	Title       string         `db:"TITLE"`        // Article title at generation time
	UserID      string         `db:"USER_ID"`      // Owning user, or the anonymous sentinel
	ScrapedHTML sql.NullString `db:"SCRAPED_HTML"` // Raw fetched HTML (CLOB)
	ScrapedText sql.NullString `db:"SCRAPED_TEXT"` // Cleaned article text (CLOB)
	Payload     string         `db:"PAYLOAD"`      // Full quiz payload as JSON (CLOB)
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
	DeletedAt   sql.NullTime   `db:"DELETED_AT"`
}

// QuizAttempt represents a user's scored attempt at a stored quiz.
type QuizAttempt struct {
	ID               string         `db:"ID"`      // ULID
	QuizID           string         `db:"QUIZ_ID"` // Foreign key to quizzes
	UserID           string         `db:"USER_ID"` // Foreign key to users
	Score            int            `db:"SCORE"`
	TotalQuestions   int            `db:"TOTAL_QUESTIONS"`
	TimeTakenSeconds sql.NullInt64  `db:"TIME_TAKEN_SECONDS"`
	TotalTimeSeconds sql.NullInt64  `db:"TOTAL_TIME_SECONDS"`
	Answers          sql.NullString `db:"ANSWERS"` // Per-question answers as JSON (CLOB)
	CreatedAt        time.Time      `db:"CREATED_AT"`
}
