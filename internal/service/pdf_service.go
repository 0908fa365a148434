package service

import (
	"bytes"
	"context"
	"fmt"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// PDFService renders a stored quiz as a printable exam sheet.
type PDFService interface {
	ExportQuiz(ctx context.Context, quizID string, includeAnswers bool) ([]byte, string, error)
}

type pdfServiceImpl struct {
	quizRepo domain.QuizRepository
}

// NewPDFService creates a PDF export service backed by the quiz store.
func NewPDFService(quizRepo domain.QuizRepository) PDFService {
	return &pdfServiceImpl{quizRepo: quizRepo}
}

var optionLabels = []string{"A", "B", "C", "D"}

// ExportQuiz renders the quiz as a PDF and returns the document bytes plus
// a suggested filename. When includeAnswers is set, an answer key with
// explanations is appended on a separate page.
func (s *pdfServiceImpl) ExportQuiz(ctx context.Context, quizID string, includeAnswers bool) ([]byte, string, error) {
	record, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, "", domain.NewInternalError("failed to look up quiz", err)
	}
	if record == nil {
		return nil, "", domain.NewQuizNotFoundError(quizID)
	}
	payload := record.Payload

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(payload.Title+" Quiz", true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(payload.Title+" Quiz"), "", "C", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr("Source: "+payload.URL), "", "C", false)
	pdf.Ln(4)

	if payload.Summary != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, tr(payload.Summary), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetTextColor(0, 0, 0)
	for i, q := range payload.Quiz {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q.Question)), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		for j, option := range q.Options {
			label := fmt.Sprintf("%d", j+1)
			if j < len(optionLabels) {
				label = optionLabels[j]
			}
			pdf.SetX(pdf.GetX() + 6)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s) %s", label, option)), "", "L", false)
		}
		pdf.Ln(3)
	}

	if includeAnswers {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, "Answer Key", "", "C", false)
		pdf.Ln(2)

		for i, q := range payload.Quiz {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, q.Answer)), "", "L", false)
			if q.Explanation != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(80, 80, 80)
				pdf.MultiCell(0, 5, tr(q.Explanation), "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.NewInternalError("failed to render quiz PDF", err)
	}

	logger.Get().Info("Quiz exported as PDF",
		zap.String("quizID", quizID),
		zap.Bool("includeAnswers", includeAnswers),
		zap.Int("bytes", buf.Len()))

	filename := fmt.Sprintf("quiz_%s.pdf", quizID)
	return buf.Bytes(), filename, nil
}
