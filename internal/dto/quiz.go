package dto

import (
	"time"

	"wikiquiz/internal/domain"
)

// GenerateQuizRequest represents the request body for quiz generation
// @Description Request body for generating a quiz from a Wikipedia article
type GenerateQuizRequest struct {
	URL          string `json:"url" validate:"required"`
	NumQuestions int    `json:"num_questions"`
	ForceRefresh bool   `json:"force_refresh"`
}

// QuizResponse is the full generated quiz returned to clients.
// @Description Generated quiz payload
type QuizResponse struct {
	ID            string                `json:"id,omitempty"`
	URL           string                `json:"url"`
	Title         string                `json:"title"`
	Summary       string                `json:"summary"`
	KeyEntities   domain.KeyEntities    `json:"key_entities"`
	Sections      []string              `json:"sections"`
	Quiz          []domain.QuizQuestion `json:"quiz"`
	RelatedTopics []string              `json:"related_topics"`
	Cached        bool                  `json:"cached"`
}

// NewQuizResponse builds the API view of a payload.
func NewQuizResponse(payload *domain.QuizPayload, cached bool) *QuizResponse {
	return &QuizResponse{
		ID:            payload.ID,
		URL:           payload.URL,
		Title:         payload.Title,
		Summary:       payload.Summary,
		KeyEntities:   payload.KeyEntities,
		Sections:      payload.Sections,
		Quiz:          payload.Quiz,
		RelatedTopics: payload.RelatedTopics,
		Cached:        cached,
	}
}

// QuizHistoryItem represents one entry of a user's generation history.
type QuizHistoryItem struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	DateGenerated time.Time `json:"date_generated"`
}

// QuizHistoryResponse is the response for listing a user's quiz history.
type QuizHistoryResponse struct {
	History []QuizHistoryItem `json:"history"`
}

// SubmitAttemptRequest represents a scored quiz attempt submission
// @Description Request body for recording a quiz attempt
type SubmitAttemptRequest struct {
	Score            int               `json:"score"`
	TotalQuestions   int               `json:"total_questions"`
	TimeTakenSeconds int               `json:"time_taken_seconds"`
	TotalTimeSeconds int               `json:"total_time_seconds"`
	Answers          map[string]string `json:"answers"`
}

// SubmitAttemptResponse confirms a recorded attempt.
type SubmitAttemptResponse struct {
	AttemptID string `json:"attempt_id"`
	Message   string `json:"message"`
}

// PreviewRequest represents the request body for an article preview
// @Description Request body for previewing a Wikipedia article
type PreviewRequest struct {
	URL string `json:"url" validate:"required"`
}

// HealthResponse reports service and dependency health.
type HealthResponse struct {
	Status        string `json:"status"`
	ModelProvider string `json:"model_provider"`
	Database      string `json:"database"`
	Cache         string `json:"cache"`
}
