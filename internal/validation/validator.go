package validation

import (
	"net/url"
	"regexp"
	"strings"

	"wikiquiz/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuizRequest validates the quiz generation request.
// The question count is clamped by the handler, not rejected here, so only
// the URL is a hard failure.
func (v *Validator) ValidateGenerateQuizRequest(rawURL string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(rawURL) == "" {
		errors = append(errors, domain.NewMissingFieldError("url"))
	} else if !IsWikipediaURL(rawURL) {
		errors = append(errors, domain.NewInvalidFormatError("url", rawURL))
	}

	return errors
}

// ValidateSubmitAttemptRequest validates an attempt submission.
func (v *Validator) ValidateSubmitAttemptRequest(quizID string, score, totalQuestions int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(quizID) == "" {
		errors = append(errors, domain.NewMissingFieldError("quiz_id"))
	} else if !isValidULID(quizID) {
		errors = append(errors, domain.NewInvalidFormatError("quiz_id", quizID))
	}

	if totalQuestions <= 0 || totalQuestions > 100 {
		errors = append(errors, domain.NewOutOfRangeError("total_questions", totalQuestions, 1, 100))
	}

	if score < 0 || (totalQuestions > 0 && score > totalQuestions) {
		errors = append(errors, domain.NewOutOfRangeError("score", score, 0, totalQuestions))
	}

	return errors
}

// IsWikipediaURL reports whether rawURL points at a Wikipedia article page.
// Any language subdomain is accepted; only the wikipedia.org host and the
// /wiki/ article path are required.
func IsWikipediaURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host != "wikipedia.org" && !strings.HasSuffix(host, ".wikipedia.org") {
		return false
	}

	return strings.Contains(u.Path, "/wiki/")
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
