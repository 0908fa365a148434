package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/validation"

	"go.uber.org/zap"
)

// AnonymousUserID owns quizzes generated without authentication. It shares
// the quizzes table with real users so the (url, user) cache gate applies
// uniformly.
const AnonymousUserID = "anonymous"

// QuizService orchestrates the scrape, generate, cache and persist pipeline.
type QuizService interface {
	GenerateQuiz(ctx context.Context, userID string, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error)
	GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error)
	GetHistory(ctx context.Context, userID string) (*dto.QuizHistoryResponse, error)
	SubmitAttempt(ctx context.Context, userID, quizID string, req *dto.SubmitAttemptRequest) (*dto.SubmitAttemptResponse, error)
	Preview(ctx context.Context, url string) *domain.ArticlePreview
}

type quizServiceImpl struct {
	quizRepo     domain.QuizRepository
	attemptRepo  domain.AttemptRepository
	scraper      domain.ArticleScraper
	generator    domain.QuizGenerator
	cacheAdapter domain.Cache
	cfg          *config.Config
}

// NewQuizService creates the quiz pipeline service. cacheAdapter may be nil
// when Redis caching is disabled.
func NewQuizService(
	quizRepo domain.QuizRepository,
	attemptRepo domain.AttemptRepository,
	scraper domain.ArticleScraper,
	generator domain.QuizGenerator,
	cacheAdapter domain.Cache,
	cfg *config.Config,
) QuizService {
	return &quizServiceImpl{
		quizRepo:     quizRepo,
		attemptRepo:  attemptRepo,
		scraper:      scraper,
		generator:    generator,
		cacheAdapter: cacheAdapter,
		cfg:          cfg,
	}
}

// GenerateQuiz runs the full pipeline for one article. Generation is
// idempotent per (url, user): when a stored quiz already covers the requested
// question count it is truncated and returned without scraping or invoking
// the model. ForceRefresh bypasses both cache layers.
func (s *quizServiceImpl) GenerateQuiz(ctx context.Context, userID string, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
	l := logger.Get()

	if !validation.IsWikipediaURL(req.URL) {
		return nil, domain.NewNotWikipediaURLError(req.URL)
	}

	if userID == "" {
		userID = AnonymousUserID
	}
	count := req.NumQuestions

	if !req.ForceRefresh {
		if payload := s.cachedPayload(ctx, req.URL, userID, count); payload != nil {
			l.Info("Serving quiz from cache",
				zap.String("url", req.URL),
				zap.String("userID", userID))
			return dto.NewQuizResponse(payload, true), nil
		}
	}

	existing, err := s.quizRepo.GetByURLAndUser(ctx, req.URL, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up stored quiz", err)
	}
	if !req.ForceRefresh && existing != nil && len(existing.Payload.Quiz) >= count {
		payload := existing.Payload
		payload.Truncate(count)
		s.storeInCache(ctx, req.URL, userID, payload)
		l.Info("Serving quiz from database",
			zap.String("url", req.URL),
			zap.String("quizID", existing.ID))
		return dto.NewQuizResponse(payload, true), nil
	}

	article, err := s.scraper.Scrape(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	if len(article.CleanedText) < s.cfg.Quiz.MinArticleChars {
		return nil, domain.NewContentTooShortError(len(article.CleanedText), s.cfg.Quiz.MinArticleChars)
	}

	payload, err := s.generator.GeneratePayload(ctx, &domain.GenerationRequest{
		URL:         article.URL,
		Title:       article.Title,
		CleanedText: article.CleanedText,
		Sections:    article.Sections,
		TargetCount: count,
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to generate quiz", err)
	}

	payload.Truncate(count)
	if len(payload.Sections) == 0 {
		payload.Sections = article.Sections
	}

	record := &domain.QuizRecord{
		URL:         req.URL,
		Title:       article.Title,
		UserID:      userID,
		ScrapedHTML: article.RawHTML,
		ScrapedText: article.CleanedText,
		Payload:     payload,
	}

	quizID, err := s.persist(ctx, record, existing)
	if err != nil {
		return nil, err
	}
	payload.ID = quizID

	s.storeInCache(ctx, req.URL, userID, payload)

	l.Info("Quiz generated and stored",
		zap.String("url", req.URL),
		zap.String("quizID", quizID),
		zap.Int("questions", len(payload.Quiz)))

	return dto.NewQuizResponse(payload, false), nil
}

// persist writes the record, resolving the insert race on the (url, user)
// unique constraint by re-reading and updating the winning row.
func (s *quizServiceImpl) persist(ctx context.Context, record *domain.QuizRecord, existing *domain.QuizRecord) (string, error) {
	if existing != nil {
		record.ID = existing.ID
		if err := s.quizRepo.Update(ctx, record); err != nil {
			return "", domain.NewInternalError("failed to update stored quiz", err)
		}
		return existing.ID, nil
	}

	quizID, err := s.quizRepo.Create(ctx, record)
	if err == nil {
		return quizID, nil
	}

	// A concurrent request may have inserted the same (url, user) row first.
	winner, readErr := s.quizRepo.GetByURLAndUser(ctx, record.URL, record.UserID)
	if readErr != nil || winner == nil {
		return "", domain.NewInternalError("failed to store quiz", err)
	}

	record.ID = winner.ID
	if err := s.quizRepo.Update(ctx, record); err != nil {
		return "", domain.NewInternalError("failed to update stored quiz after insert race", err)
	}
	return winner.ID, nil
}

// GetQuiz returns a stored quiz by ID, scoped to its owner. A quiz owned by
// another user is indistinguishable from a missing one.
func (s *quizServiceImpl) GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error) {
	if userID == "" {
		userID = AnonymousUserID
	}
	record, err := s.quizRepo.GetByIDAndUser(ctx, quizID, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up quiz", err)
	}
	if record == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return dto.NewQuizResponse(record.Payload, true), nil
}

// GetHistory returns the user's generated quizzes, newest first.
func (s *quizServiceImpl) GetHistory(ctx context.Context, userID string) (*dto.QuizHistoryResponse, error) {
	items, err := s.quizRepo.ListHistoryForUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quiz history", err)
	}

	history := make([]dto.QuizHistoryItem, 0, len(items))
	for _, item := range items {
		history = append(history, dto.QuizHistoryItem{
			ID:            item.ID,
			URL:           item.URL,
			Title:         item.Title,
			DateGenerated: item.DateGenerated,
		})
	}
	return &dto.QuizHistoryResponse{History: history}, nil
}

// SubmitAttempt records a scored attempt against a stored quiz.
func (s *quizServiceImpl) SubmitAttempt(ctx context.Context, userID, quizID string, req *dto.SubmitAttemptRequest) (*dto.SubmitAttemptResponse, error) {
	record, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up quiz", err)
	}
	if record == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	if userID == "" {
		userID = AnonymousUserID
	}

	attemptID, err := s.attemptRepo.CreateAttempt(ctx, &domain.QuizAttempt{
		QuizID:           quizID,
		UserID:           userID,
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		TimeTakenSeconds: req.TimeTakenSeconds,
		TotalTimeSeconds: req.TotalTimeSeconds,
		Answers:          req.Answers,
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to record quiz attempt", err)
	}

	logger.Get().Info("Quiz attempt recorded",
		zap.String("quizID", quizID),
		zap.String("attemptID", attemptID),
		zap.Int("score", req.Score),
		zap.Int("total", req.TotalQuestions))

	return &dto.SubmitAttemptResponse{
		AttemptID: attemptID,
		Message:   "Attempt recorded",
	}, nil
}

// Preview returns the article title and first paragraph for URL validation.
func (s *quizServiceImpl) Preview(ctx context.Context, url string) *domain.ArticlePreview {
	if !validation.IsWikipediaURL(url) {
		return &domain.ArticlePreview{
			Valid: false,
			Error: "Only Wikipedia article URLs are accepted",
		}
	}
	return s.scraper.Preview(ctx, url)
}

// cachedPayload returns a cached payload covering at least count questions,
// truncated to count, or nil on any miss or error. Cache failures are never
// fatal to generation.
func (s *quizServiceImpl) cachedPayload(ctx context.Context, url, userID string, count int) *domain.QuizPayload {
	if s.cacheAdapter == nil || !s.cfg.Quiz.CacheEnabled {
		return nil
	}

	raw, err := s.cacheAdapter.Get(ctx, quizCacheKey(url, userID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Quiz cache read failed", zap.Error(err))
		}
		return nil
	}

	var payload domain.QuizPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		logger.Get().Warn("Corrupt quiz cache entry, ignoring", zap.Error(err))
		return nil
	}
	if len(payload.Quiz) < count {
		return nil
	}
	payload.Truncate(count)
	return &payload
}

// storeInCache writes the payload back to Redis on a best-effort basis.
func (s *quizServiceImpl) storeInCache(ctx context.Context, url, userID string, payload *domain.QuizPayload) {
	if s.cacheAdapter == nil || !s.cfg.Quiz.CacheEnabled {
		return
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Warn("Failed to encode quiz payload for cache", zap.Error(err))
		return
	}
	if err := s.cacheAdapter.Set(ctx, quizCacheKey(url, userID), string(encoded), s.cfg.Quiz.CacheTTL); err != nil {
		logger.Get().Warn("Quiz cache write failed", zap.Error(err))
	}
}

// quizCacheKey hashes the URL so arbitrarily long article URLs produce
// fixed-size Redis keys.
func quizCacheKey(url, userID string) string {
	sum := sha256.Sum256([]byte(url))
	return cache.GenerateCacheKey("quiz", "payload", hex.EncodeToString(sum[:16]), userID)
}
