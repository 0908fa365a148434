package domain

import "context"

// ArticleScraper fetches a Wikipedia article and reduces it to clean text.
type ArticleScraper interface {
	// Scrape retrieves the article at url and returns its cleaned form.
	// Failures surface as FetchTimeout/FetchHTTPStatus/FetchNetwork errors.
	Scrape(ctx context.Context, url string) (*Article, error)

	// Preview returns the article title and first paragraph with a shorter
	// timeout. It never fails hard; fetch errors are reported in the result.
	Preview(ctx context.Context, url string) *ArticlePreview
}

// QuizGenerator drives the model to produce a quiz payload for an article.
// Implementations must always return a usable payload: when the model is
// unavailable or fails irrecoverably, a deterministic fallback payload is
// returned instead of an error.
type QuizGenerator interface {
	GeneratePayload(ctx context.Context, req *GenerationRequest) (*QuizPayload, error)
}

// QuizRepository persists generated quizzes keyed by (url, user).
type QuizRepository interface {
	GetByURLAndUser(ctx context.Context, url, userID string) (*QuizRecord, error)
	GetByID(ctx context.Context, id string) (*QuizRecord, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*QuizRecord, error)
	Create(ctx context.Context, record *QuizRecord) (string, error)
	Update(ctx context.Context, record *QuizRecord) error
	ListHistoryForUser(ctx context.Context, userID string) ([]QuizHistoryItem, error)
}

// AttemptRepository persists quiz attempts.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *QuizAttempt) (string, error)
	ListAttemptsForUser(ctx context.Context, userID string) ([]QuizAttempt, error)
}

// UserRepository persists user accounts created through the auth boundary.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
