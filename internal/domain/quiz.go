package domain

import "time"

// Difficulty levels accepted for generated questions.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DefaultDifficulty is assigned when the model omits the difficulty field.
const DefaultDifficulty = DifficultyMedium

// QuizQuestion is a single multiple-choice question. Once accepted into a
// payload it is never mutated; uniqueness across a payload is enforced by
// exact-match of the question text.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// KeyEntities groups the named entities the model extracted from an article.
type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// QuizPayload is the unit of caching, persistence and API response.
type QuizPayload struct {
	ID            string         `json:"id,omitempty"`
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	KeyEntities   KeyEntities    `json:"key_entities"`
	Sections      []string       `json:"sections"`
	Quiz          []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// Truncate limits the payload's questions to at most count.
func (p *QuizPayload) Truncate(count int) {
	if count >= 0 && len(p.Quiz) > count {
		p.Quiz = p.Quiz[:count]
	}
}

// Article is the scraped and cleaned representation of a Wikipedia page.
// Immutable once produced by the scraper.
type Article struct {
	URL         string
	Title       string
	Sections    []string
	CleanedText string
	RawHTML     string
}

// ArticlePreview is a lightweight view used for URL validation.
type ArticlePreview struct {
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
}

// GenerationRequest carries everything a single quiz generation call needs.
// It is ephemeral and owned by the orchestrator for the duration of the call.
type GenerationRequest struct {
	URL         string
	Title       string
	CleanedText string
	Sections    []string
	TargetCount int
}

// QuizRecord is a persisted quiz row for a (url, user) pair.
type QuizRecord struct {
	ID          string
	URL         string
	Title       string
	UserID      string
	ScrapedHTML string
	ScrapedText string
	Payload     *QuizPayload
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuizHistoryItem is a single entry of a user's generation history.
type QuizHistoryItem struct {
	ID            string
	URL           string
	Title         string
	DateGenerated time.Time
}

// QuizAttempt records a user's submitted answers for a stored quiz.
type QuizAttempt struct {
	ID               string
	QuizID           string
	UserID           string
	Score            int
	TotalQuestions   int
	TimeTakenSeconds int
	TotalTimeSeconds int
	Answers          map[string]string
	CreatedAt        time.Time
}
