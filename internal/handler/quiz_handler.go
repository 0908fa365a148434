package handler

import (
	"context"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/middleware"
	"wikiquiz/internal/service"
	"wikiquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service    service.QuizService
	pdfService service.PDFService
	validator  *validation.Validator
	cache      domain.Cache
	cfg        *config.Config
	modelReady bool
	dbPinger   func(ctx context.Context) error
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(
	quizService service.QuizService,
	pdfService service.PDFService,
	validator *validation.Validator,
	cacheAdapter domain.Cache,
	cfg *config.Config,
	modelReady bool,
	dbPinger func(ctx context.Context) error,
) *QuizHandler {
	return &QuizHandler{
		service:    quizService,
		pdfService: pdfService,
		validator:  validator,
		cache:      cacheAdapter,
		cfg:        cfg,
		modelReady: modelReady,
		dbPinger:   dbPinger,
	}
}

// Health godoc
// @Summary Service health
// @Description Reports API, database, cache and model backend status
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:        "ok",
		ModelProvider: "fallback",
		Database:      "ok",
		Cache:         "disabled",
	}
	if h.modelReady {
		resp.ModelProvider = "gemini"
	}
	if h.dbPinger != nil {
		if err := h.dbPinger(c.Context()); err != nil {
			resp.Database = "unreachable"
			resp.Status = "degraded"
		}
	}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(c.Context()); err != nil {
			resp.Cache = "unreachable"
			resp.Status = "degraded"
		}
	}
	return c.JSON(resp)
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Scrapes the article, generates multiple-choice questions and stores the result. Repeated requests for the same URL are served from cache unless force_refresh is set.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quiz/generate [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	if errs := h.validator.ValidateGenerateQuizRequest(req.URL); len(errs) > 0 {
		return errs
	}
	req.NumQuestions = h.clampCount(req.NumQuestions)

	resp, err := h.service.GenerateQuiz(c.Context(), userIDFromCtx(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz godoc
// @Summary Get a stored quiz
// @Description Returns a previously generated quiz by its ID. Quizzes are scoped to their owner; unauthenticated callers only see anonymously generated quizzes.
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quizID := c.Params("id")
	resp, err := h.service.GetQuiz(c.Context(), userIDFromCtx(c), quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetHistory godoc
// @Summary List the user's quiz history
// @Description Returns quizzes generated by the authenticated user, newest first
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.QuizHistoryResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quiz/history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	resp, err := h.service.GetHistory(c.Context(), userIDFromCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAttempt godoc
// @Summary Record a quiz attempt
// @Description Stores a scored attempt for a quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitAttemptRequest true "Attempt"
// @Success 200 {object} dto.SubmitAttemptResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{id}/attempt [post]
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	quizID := c.Params("id")

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	if errs := h.validator.ValidateSubmitAttemptRequest(quizID, req.Score, req.TotalQuestions); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.SubmitAttempt(c.Context(), userIDFromCtx(c), quizID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExportPDF godoc
// @Summary Export a quiz as PDF
// @Description Renders a stored quiz as a printable exam sheet. Set answers=true to append the answer key.
// @Tags quiz
// @Produce application/pdf
// @Param id path string true "Quiz ID"
// @Param answers query bool false "Include answer key"
// @Success 200 {file} binary
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{id}/export [get]
func (h *QuizHandler) ExportPDF(c *fiber.Ctx) error {
	quizID := c.Params("id")
	includeAnswers := c.QueryBool("answers", false)

	data, filename, err := h.pdfService.ExportQuiz(c.Context(), quizID, includeAnswers)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// Preview godoc
// @Summary Preview a Wikipedia article
// @Description Returns the article title and first paragraph for URL validation. Never fails hard; fetch problems are reported in the body.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Preview request"
// @Success 200 {object} domain.ArticlePreview
// @Router /quiz/preview [post]
func (h *QuizHandler) Preview(c *fiber.Ctx) error {
	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	preview := h.service.Preview(c.Context(), req.URL)
	return c.JSON(preview)
}

// clampCount normalizes the requested question count: zero means the
// default, out-of-range values are clamped to the configured bounds.
func (h *QuizHandler) clampCount(count int) int {
	if count == 0 {
		return h.cfg.Quiz.DefaultCount
	}
	if count < 1 {
		logger.Get().Debug("Clamping question count", zap.Int("requested", count))
		return 1
	}
	if count > h.cfg.Quiz.MaxCount {
		logger.Get().Debug("Clamping question count", zap.Int("requested", count))
		return h.cfg.Quiz.MaxCount
	}
	return count
}

// userIDFromCtx reads the authenticated user ID set by the auth middleware.
// Empty means anonymous.
func userIDFromCtx(c *fiber.Ctx) string {
	if userID, ok := c.Locals(middleware.UserIDKey).(string); ok {
		return userID
	}
	return ""
}
