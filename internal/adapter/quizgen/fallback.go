package quizgen

import "wikiquiz/internal/domain"

const fallbackQuestionCount = 5

var fallbackOptions = []string{"Yes", "No", "Not stated", "Irrelevant"}

// FallbackPayload produces a valid, schema-conformant placeholder quiz for
// when the model is unavailable or fails irrecoverably. It never calls the
// model and always succeeds.
func FallbackPayload(url, title, articleText string, sections []string) *domain.QuizPayload {
	quiz := make([]domain.QuizQuestion, 0, fallbackQuestionCount)
	for i := 0; i < fallbackQuestionCount; i++ {
		quiz = append(quiz, domain.QuizQuestion{
			Question:    "Is this article about '" + title + "'?",
			Options:     append([]string(nil), fallbackOptions...),
			Answer:      "Yes",
			Difficulty:  domain.DifficultyEasy,
			Explanation: "Fallback quiz - Gemini API quota was exceeded or key is missing.",
		})
	}

	truncatedSections := sections
	if len(truncatedSections) > 8 {
		truncatedSections = truncatedSections[:8]
	}
	if truncatedSections == nil {
		truncatedSections = []string{}
	}

	return &domain.QuizPayload{
		URL:     url,
		Title:   title,
		Summary: "Placeholder summary for " + title + ". Configure GEMINI_API_KEY for real AI-generated content.",
		KeyEntities: domain.KeyEntities{
			People:        []string{},
			Organizations: []string{},
			Locations:     []string{},
		},
		Sections:      truncatedSections,
		Quiz:          quiz,
		RelatedTopics: []string{"Wikipedia", "Article", "Reference"},
	}
}
