package service

import (
	"context"
	"errors"
	"testing"

	"wikiquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pdfTestRecord() *domain.QuizRecord {
	return &domain.QuizRecord{
		ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0",
		Payload: &domain.QuizPayload{
			ID:      "01HQZXY8K2M3N4P5Q6R7S8T9V0",
			URL:     "https://en.wikipedia.org/wiki/Go",
			Title:   "Go (programming language)",
			Summary: "Go is a language designed at Google.",
			Quiz: []domain.QuizQuestion{
				{
					Question:    "Who designed Go?",
					Options:     []string{"Rob Pike", "Guido", "Bjarne", "James"},
					Answer:      "Rob Pike",
					Explanation: "Mentioned in the History section.",
				},
				{
					Question: "Is Go compiled?",
					Options:  []string{"Yes", "No"},
					Answer:   "Yes",
				},
			},
		},
	}
}

func TestExportQuiz(t *testing.T) {
	quizRepo := new(mockQuizRepository)
	record := pdfTestRecord()
	quizRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)

	svc := NewPDFService(quizRepo)
	data, filename, err := svc.ExportQuiz(context.Background(), record.ID, false)
	require.NoError(t, err)

	assert.Equal(t, "quiz_01HQZXY8K2M3N4P5Q6R7S8T9V0.pdf", filename)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportQuiz_WithAnswerKey(t *testing.T) {
	quizRepo := new(mockQuizRepository)
	record := pdfTestRecord()
	quizRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)

	svc := NewPDFService(quizRepo)

	without, _, err := svc.ExportQuiz(context.Background(), record.ID, false)
	require.NoError(t, err)
	with, _, err := svc.ExportQuiz(context.Background(), record.ID, true)
	require.NoError(t, err)

	// The answer key adds a page
	assert.Greater(t, len(with), len(without))
}

func TestExportQuiz_NotFound(t *testing.T) {
	quizRepo := new(mockQuizRepository)
	quizRepo.On("GetByID", mock.Anything, "01HQZXMISSING0000000000000").Return(nil, nil)

	svc := NewPDFService(quizRepo)
	_, _, err := svc.ExportQuiz(context.Background(), "01HQZXMISSING0000000000000", false)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
}

func TestExportQuiz_RepositoryError(t *testing.T) {
	quizRepo := new(mockQuizRepository)
	quizRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, errors.New("ORA-03113: end-of-file on communication channel"))

	svc := NewPDFService(quizRepo)
	_, _, err := svc.ExportQuiz(context.Background(), "01HQZXY8K2M3N4P5Q6R7S8T9V0", false)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInternal, domainErr.Code)
}
