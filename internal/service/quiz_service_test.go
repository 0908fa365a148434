package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuizRepository struct {
	mock.Mock
}

func (m *mockQuizRepository) GetByURLAndUser(ctx context.Context, url, userID string) (*domain.QuizRecord, error) {
	args := m.Called(ctx, url, userID)
	record, _ := args.Get(0).(*domain.QuizRecord)
	return record, args.Error(1)
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id string) (*domain.QuizRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*domain.QuizRecord)
	return record, args.Error(1)
}

func (m *mockQuizRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.QuizRecord, error) {
	args := m.Called(ctx, id, userID)
	record, _ := args.Get(0).(*domain.QuizRecord)
	return record, args.Error(1)
}

func (m *mockQuizRepository) Create(ctx context.Context, record *domain.QuizRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *mockQuizRepository) Update(ctx context.Context, record *domain.QuizRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockQuizRepository) ListHistoryForUser(ctx context.Context, userID string) ([]domain.QuizHistoryItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]domain.QuizHistoryItem)
	return items, args.Error(1)
}

type mockAttemptRepository struct {
	mock.Mock
}

func (m *mockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) (string, error) {
	args := m.Called(ctx, attempt)
	return args.String(0), args.Error(1)
}

func (m *mockAttemptRepository) ListAttemptsForUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	args := m.Called(ctx, userID)
	attempts, _ := args.Get(0).([]domain.QuizAttempt)
	return attempts, args.Error(1)
}

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*domain.Article, error) {
	args := m.Called(ctx, url)
	article, _ := args.Get(0).(*domain.Article)
	return article, args.Error(1)
}

func (m *mockScraper) Preview(ctx context.Context, url string) *domain.ArticlePreview {
	args := m.Called(ctx, url)
	preview, _ := args.Get(0).(*domain.ArticlePreview)
	return preview
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GeneratePayload(ctx context.Context, req *domain.GenerationRequest) (*domain.QuizPayload, error) {
	args := m.Called(ctx, req)
	payload, _ := args.Get(0).(*domain.QuizPayload)
	return payload, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

const testArticleURL = "https://en.wikipedia.org/wiki/Go_(programming_language)"

func testConfig() *config.Config {
	return &config.Config{
		Quiz: config.QuizConfig{
			CacheEnabled:    true,
			CacheTTL:        6 * time.Hour,
			MinArticleChars: 200,
			DefaultCount:    10,
			MaxCount:        50,
		},
	}
}

func testArticle() *domain.Article {
	text := make([]byte, 0, 500)
	for i := 0; i < 50; i++ {
		text = append(text, []byte("Go is nice. ")...)
	}
	return &domain.Article{
		URL:         testArticleURL,
		Title:       "Go (programming language)",
		Sections:    []string{"History", "Design"},
		CleanedText: string(text),
		RawHTML:     "<html>raw</html>",
	}
}

func testPayload(count int) *domain.QuizPayload {
	questions := make([]domain.QuizQuestion, count)
	for i := range questions {
		questions[i] = domain.QuizQuestion{
			Question:   "Question " + string(rune('A'+i)),
			Options:    []string{"a", "b", "c", "d"},
			Answer:     "a",
			Difficulty: domain.DifficultyMedium,
		}
	}
	return &domain.QuizPayload{
		URL:           testArticleURL,
		Title:         "Go (programming language)",
		Summary:       "A summary.",
		Sections:      []string{"History"},
		Quiz:          questions,
		RelatedTopics: []string{"C"},
	}
}

type quizServiceMocks struct {
	quizRepo    *mockQuizRepository
	attemptRepo *mockAttemptRepository
	scraper     *mockScraper
	generator   *mockGenerator
	cache       *mockCache
}

func newQuizService(cfg *config.Config) (QuizService, *quizServiceMocks) {
	m := &quizServiceMocks{
		quizRepo:    new(mockQuizRepository),
		attemptRepo: new(mockAttemptRepository),
		scraper:     new(mockScraper),
		generator:   new(mockGenerator),
		cache:       new(mockCache),
	}
	svc := NewQuizService(m.quizRepo, m.attemptRepo, m.scraper, m.generator, m.cache, cfg)
	return svc, m
}

func TestGenerateQuiz_RejectsNonWikipediaURL(t *testing.T) {
	svc, _ := newQuizService(testConfig())

	_, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          "https://example.com/wiki/Go",
		NumQuestions: 10,
	})

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeNotWikipediaURL, domainErr.Code)
}

func TestGenerateQuiz_ServesFromRedisCache(t *testing.T) {
	svc, m := newQuizService(testConfig())

	cached, err := json.Marshal(testPayload(10))
	require.NoError(t, err)
	m.cache.On("Get", mock.Anything, mock.Anything).Return(string(cached), nil)

	resp, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 5,
	})
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Len(t, resp.Quiz, 5)

	// A cache hit short-circuits the whole pipeline
	m.quizRepo.AssertNotCalled(t, "GetByURLAndUser", mock.Anything, mock.Anything, mock.Anything)
	m.scraper.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything)
	m.generator.AssertNotCalled(t, "GeneratePayload", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_CacheHitWithTooFewQuestionsRegenerates(t *testing.T) {
	svc, m := newQuizService(testConfig())

	cached, err := json.Marshal(testPayload(3))
	require.NoError(t, err)
	m.cache.On("Get", mock.Anything, mock.Anything).Return(string(cached), nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(nil, nil)
	m.quizRepo.On("Create", mock.Anything, mock.Anything).Return("01HQZX0000000000000000000A", nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(testArticle(), nil)
	m.generator.On("GeneratePayload", mock.Anything, mock.Anything).Return(testPayload(10), nil)

	resp, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Len(t, resp.Quiz, 10)
	m.generator.AssertCalled(t, "GeneratePayload", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_ServesFromDatabase(t *testing.T) {
	svc, m := newQuizService(testConfig())

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	stored := &domain.QuizRecord{
		ID:      "01HQZX0000000000000000000A",
		URL:     testArticleURL,
		UserID:  "user-1",
		Payload: testPayload(10),
	}
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(stored, nil)

	resp, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 5,
	})
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Len(t, resp.Quiz, 5)
	m.scraper.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything)

	// The truncated payload is written back to Redis
	m.cache.AssertCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuiz_ForceRefreshBypassesBothCaches(t *testing.T) {
	svc, m := newQuizService(testConfig())

	stored := &domain.QuizRecord{
		ID:      "01HQZX0000000000000000000A",
		URL:     testArticleURL,
		UserID:  "user-1",
		Payload: testPayload(10),
	}
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(stored, nil)
	m.quizRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(testArticle(), nil)
	m.generator.On("GeneratePayload", mock.Anything, mock.Anything).Return(testPayload(10), nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
		ForceRefresh: true,
	})
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, "01HQZX0000000000000000000A", resp.ID)
	m.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.quizRepo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
	m.quizRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_AnonymousUserGetsSentinelID(t *testing.T) {
	svc, m := newQuizService(testConfig())

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, AnonymousUserID).Return(nil, nil)
	m.quizRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.QuizRecord) bool {
		return r.UserID == AnonymousUserID
	})).Return("01HQZX0000000000000000000B", nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(testArticle(), nil)
	m.generator.On("GeneratePayload", mock.Anything, mock.Anything).Return(testPayload(10), nil)

	_, err := svc.GenerateQuiz(context.Background(), "", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})
	require.NoError(t, err)
	m.quizRepo.AssertExpectations(t)
}

func TestGenerateQuiz_ContentTooShort(t *testing.T) {
	svc, m := newQuizService(testConfig())

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(nil, nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(&domain.Article{
		URL:         testArticleURL,
		Title:       "Stub",
		CleanedText: "too short",
	}, nil)

	_, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeContentTooShort, domainErr.Code)
	m.generator.AssertNotCalled(t, "GeneratePayload", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_ScrapeErrorPropagates(t *testing.T) {
	svc, m := newQuizService(testConfig())

	fetchErr := domain.NewFetchHTTPStatusError(testArticleURL, 404)
	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(nil, nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(nil, fetchErr)

	_, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})
	assert.ErrorIs(t, err, fetchErr)
}

func TestGenerateQuiz_InsertRaceFallsBackToUpdate(t *testing.T) {
	svc, m := newQuizService(testConfig())

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(testArticle(), nil)
	m.generator.On("GeneratePayload", mock.Anything, mock.Anything).Return(testPayload(10), nil)

	winner := &domain.QuizRecord{
		ID:      "01HQZXWINNER00000000000000",
		URL:     testArticleURL,
		UserID:  "user-1",
		Payload: testPayload(10),
	}
	// First lookup sees no row, the insert loses the race, the re-read finds
	// the winner.
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(nil, nil).Once()
	m.quizRepo.On("Create", mock.Anything, mock.Anything).Return("", errors.New("ORA-00001: unique constraint violated"))
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(winner, nil).Once()
	m.quizRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.QuizRecord) bool {
		return r.ID == winner.ID
	})).Return(nil)

	resp, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, winner.ID, resp.ID)
	m.quizRepo.AssertExpectations(t)
}

func TestGenerateQuiz_CacheDisabledSkipsRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Quiz.CacheEnabled = false
	svc, m := newQuizService(cfg)

	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(nil, nil)
	m.quizRepo.On("Create", mock.Anything, mock.Anything).Return("01HQZX0000000000000000000C", nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(testArticle(), nil)
	m.generator.On("GeneratePayload", mock.Anything, mock.Anything).Return(testPayload(10), nil)

	_, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})
	require.NoError(t, err)

	m.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuiz_EmptySectionsFallBackToArticle(t *testing.T) {
	svc, m := newQuizService(testConfig())

	payload := testPayload(10)
	payload.Sections = nil

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.quizRepo.On("GetByURLAndUser", mock.Anything, testArticleURL, "user-1").Return(nil, nil)
	m.quizRepo.On("Create", mock.Anything, mock.Anything).Return("01HQZX0000000000000000000D", nil)
	m.scraper.On("Scrape", mock.Anything, testArticleURL).Return(testArticle(), nil)
	m.generator.On("GeneratePayload", mock.Anything, mock.Anything).Return(payload, nil)

	resp, err := svc.GenerateQuiz(context.Background(), "user-1", &dto.GenerateQuizRequest{
		URL:          testArticleURL,
		NumQuestions: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"History", "Design"}, resp.Sections)
}

func TestGetQuiz_ScopedToOwner(t *testing.T) {
	svc, m := newQuizService(testConfig())

	stored := &domain.QuizRecord{
		ID:      "01HQZX0000000000000000000A",
		UserID:  "owner-user",
		Payload: testPayload(10),
	}
	m.quizRepo.On("GetByIDAndUser", mock.Anything, stored.ID, "owner-user").Return(stored, nil)

	resp, err := svc.GetQuiz(context.Background(), "owner-user", stored.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Quiz, 10)
	m.quizRepo.AssertExpectations(t)
}

func TestGetQuiz_OtherUsersQuizIsNotFound(t *testing.T) {
	svc, m := newQuizService(testConfig())

	// The lookup is scoped to the caller, so a quiz owned by someone else
	// never comes back. Anonymous callers are scoped to the sentinel user.
	m.quizRepo.On("GetByIDAndUser", mock.Anything, "01HQZX0000000000000000000A", AnonymousUserID).Return(nil, nil)

	_, err := svc.GetQuiz(context.Background(), "", "01HQZX0000000000000000000A")

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
	m.quizRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetQuiz_NotFound(t *testing.T) {
	svc, m := newQuizService(testConfig())
	m.quizRepo.On("GetByIDAndUser", mock.Anything, "01HQZXMISSING0000000000000", "user-1").Return(nil, nil)

	_, err := svc.GetQuiz(context.Background(), "user-1", "01HQZXMISSING0000000000000")

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
}

func TestGetHistory(t *testing.T) {
	svc, m := newQuizService(testConfig())

	now := time.Now()
	m.quizRepo.On("ListHistoryForUser", mock.Anything, "user-1").Return([]domain.QuizHistoryItem{
		{ID: "q2", URL: "u2", Title: "t2", DateGenerated: now},
		{ID: "q1", URL: "u1", Title: "t1", DateGenerated: now.Add(-time.Hour)},
	}, nil)

	resp, err := svc.GetHistory(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, resp.History, 2)
	assert.Equal(t, "q2", resp.History[0].ID)
	assert.Equal(t, "q1", resp.History[1].ID)
}

func TestGetHistory_EmptyIsNotNil(t *testing.T) {
	svc, m := newQuizService(testConfig())
	m.quizRepo.On("ListHistoryForUser", mock.Anything, "user-1").Return([]domain.QuizHistoryItem{}, nil)

	resp, err := svc.GetHistory(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, resp.History)
	assert.Empty(t, resp.History)
}

func TestSubmitAttempt(t *testing.T) {
	svc, m := newQuizService(testConfig())

	m.quizRepo.On("GetByID", mock.Anything, "01HQZX0000000000000000000A").Return(&domain.QuizRecord{
		ID:      "01HQZX0000000000000000000A",
		Payload: testPayload(10),
	}, nil)
	m.attemptRepo.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.QuizID == "01HQZX0000000000000000000A" && a.UserID == "user-1" && a.Score == 7
	})).Return("01HQZXATTEMPT0000000000000", nil)

	resp, err := svc.SubmitAttempt(context.Background(), "user-1", "01HQZX0000000000000000000A", &dto.SubmitAttemptRequest{
		Score:          7,
		TotalQuestions: 10,
		Answers:        map[string]string{"0": "a"},
	})
	require.NoError(t, err)

	assert.Equal(t, "01HQZXATTEMPT0000000000000", resp.AttemptID)
	m.attemptRepo.AssertExpectations(t)
}

func TestSubmitAttempt_QuizNotFound(t *testing.T) {
	svc, m := newQuizService(testConfig())
	m.quizRepo.On("GetByID", mock.Anything, "01HQZXMISSING0000000000000").Return(nil, nil)

	_, err := svc.SubmitAttempt(context.Background(), "user-1", "01HQZXMISSING0000000000000", &dto.SubmitAttemptRequest{
		Score:          1,
		TotalQuestions: 5,
	})

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
	m.attemptRepo.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
}

func TestPreview_RejectsNonWikipediaURL(t *testing.T) {
	svc, m := newQuizService(testConfig())

	preview := svc.Preview(context.Background(), "https://example.com/wiki/Go")

	assert.False(t, preview.Valid)
	assert.NotEmpty(t, preview.Error)
	m.scraper.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
}
