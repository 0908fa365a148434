package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// Generator implements domain.QuizGenerator against a Gemini backend via
// langchaingo. A nil llm means no credential was configured; generation then
// routes straight to the fallback payload without spending retry budget.
type Generator struct {
	llm                   llms.Model
	modelName             string
	temperature           float64
	maxRetries            int
	initialBackoff        time.Duration
	callTimeout           time.Duration
	maxArticleChars       int
	maxSupplementAttempts int
	sleep                 func(time.Duration)
}

// NewGeminiQuizGenerator creates the quiz generator. A missing API key is
// not an error: the generator stays usable and serves fallback payloads.
func NewGeminiQuizGenerator(ctx context.Context, cfg config.LLMConfig) (*Generator, error) {
	g := &Generator{
		modelName:             cfg.Model,
		temperature:           cfg.Temperature,
		maxRetries:            cfg.MaxRetries,
		initialBackoff:        cfg.InitialBackoff,
		callTimeout:           cfg.CallTimeout,
		maxArticleChars:       cfg.MaxArticleChars,
		maxSupplementAttempts: cfg.MaxSupplementAttempts,
		sleep:                 defaultSleep,
	}

	if cfg.GeminiAPIKey == "" {
		logger.Get().Warn("GEMINI_API_KEY not configured; quiz generation will use fallback payloads")
		return g, nil
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.GeminiAPIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	logger.Get().Info("Gemini quiz generator initialized", zap.String("model", cfg.Model))
	g.llm = llm
	return g, nil
}

// Available reports whether a model backend is configured.
func (g *Generator) Available() bool {
	return g.llm != nil
}

// modelQuestion mirrors the question shape the prompt instructs the model
// to emit. All fields are optional on the wire; defaults are applied during
// normalization.
type modelQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// modelPayload mirrors the full-quiz response shape.
type modelPayload struct {
	Summary       string              `json:"summary"`
	KeyEntities   *domain.KeyEntities `json:"key_entities"`
	Sections      []string            `json:"sections"`
	Quiz          []modelQuestion     `json:"quiz"`
	RelatedTopics []string            `json:"related_topics"`
}

// GeneratePayload implements domain.QuizGenerator. It always returns a
// usable payload: model or extraction failures during generation are
// converted into the deterministic fallback quiz.
func (g *Generator) GeneratePayload(ctx context.Context, req *domain.GenerationRequest) (*domain.QuizPayload, error) {
	l := logger.Get()

	payload, err := g.generate(ctx, req)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == domain.CodeModelUnavailable {
			l.Warn("Model not available, using fallback quiz", zap.String("url", req.URL))
		} else {
			l.Error("Error generating quiz, using fallback",
				zap.String("url", req.URL),
				zap.Error(err))
		}
		return FallbackPayload(req.URL, req.Title, req.CleanedText, req.Sections), nil
	}

	return payload, nil
}

func (g *Generator) generate(ctx context.Context, req *domain.GenerationRequest) (*domain.QuizPayload, error) {
	l := logger.Get()

	if g.llm == nil {
		return nil, domain.NewModelUnavailableError()
	}

	truncated := truncateArticleText(req.CleanedText, g.maxArticleChars)

	prompt := renderPrompt(quizGenerationTemplate, map[string]string{
		"url":          req.URL,
		"title":        req.Title,
		"article_text": truncated,
		"count":        strconv.Itoa(req.TargetCount),
	})

	l.Info("Generating quiz", zap.Int("count", req.TargetCount), zap.String("url", req.URL))

	responseText, err := g.invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	data, err := ExtractJSON(responseText)
	if err != nil {
		return nil, err
	}

	var parsed modelPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode model payload: %w", err)
	}

	quiz := make([]domain.QuizQuestion, 0, req.TargetCount)
	seen := make(map[string]struct{})
	for _, q := range parsed.Quiz {
		if q.Question == "" || len(q.Options) == 0 || q.Answer == "" {
			continue
		}
		if _, dup := seen[q.Question]; dup {
			continue
		}
		quiz = append(quiz, normalizeQuestion(q))
		seen[q.Question] = struct{}{}
	}

	quiz = g.supplement(ctx, req, truncated, quiz, seen)

	if len(quiz) > req.TargetCount {
		quiz = quiz[:req.TargetCount]
	}

	l.Info("Generated quiz questions", zap.Int("questions", len(quiz)), zap.String("url", req.URL))

	sections := parsed.Sections
	if len(sections) == 0 {
		sections = req.Sections
	}
	relatedTopics := parsed.RelatedTopics
	if relatedTopics == nil {
		relatedTopics = []string{}
	}
	keyEntities := domain.KeyEntities{
		People:        []string{},
		Organizations: []string{},
		Locations:     []string{},
	}
	if parsed.KeyEntities != nil {
		keyEntities = *parsed.KeyEntities
	}

	return &domain.QuizPayload{
		URL:           req.URL,
		Title:         req.Title,
		Summary:       parsed.Summary,
		KeyEntities:   keyEntities,
		Sections:      sections,
		Quiz:          quiz,
		RelatedTopics: relatedTopics,
	}, nil
}

// supplement asks the model for additional unique questions until the target
// count is reached or the attempt budget runs out. Errors here never demote
// the already-accumulated quiz; they only stop further supplementation.
func (g *Generator) supplement(
	ctx context.Context,
	req *domain.GenerationRequest,
	truncatedText string,
	quiz []domain.QuizQuestion,
	seen map[string]struct{},
) []domain.QuizQuestion {
	l := logger.Get()

	attempts := 0
	for len(quiz) < req.TargetCount && attempts < g.maxSupplementAttempts {
		attempts++
		remaining := req.TargetCount - len(quiz)

		l.Info("Requesting supplementary questions",
			zap.Int("remaining", remaining),
			zap.Int("attempt", attempts))

		prompt := renderPrompt(supplementaryTemplate, map[string]string{
			"url":                req.URL,
			"title":              req.Title,
			"article_text":       truncatedText,
			"remaining":          strconv.Itoa(remaining),
			"previous_questions": formatPreviousQuestions(quiz),
		})

		responseText, err := g.invoke(ctx, prompt)
		if err != nil {
			l.Warn("Failed to generate supplementary questions", zap.Error(err))
			break
		}

		data, err := ExtractJSON(responseText)
		if err != nil {
			l.Warn("Failed to extract supplementary questions", zap.Error(err))
			break
		}

		var more struct {
			Quiz []modelQuestion `json:"quiz"`
		}
		if err := json.Unmarshal(data, &more); err != nil {
			l.Warn("Failed to decode supplementary questions", zap.Error(err))
			break
		}

		for _, q := range more.Quiz {
			if q.Question == "" {
				continue
			}
			if _, dup := seen[q.Question]; dup {
				continue
			}
			quiz = append(quiz, normalizeQuestion(q))
			seen[q.Question] = struct{}{}
			if len(quiz) >= req.TargetCount {
				break
			}
		}
	}

	return quiz
}

// invoke runs one retried model call under the per-call timeout.
func (g *Generator) invoke(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	return g.generateWithRetry(callCtx, prompt)
}

// normalizeQuestion applies the output contract: at most 4 options, default
// difficulty and explanation for missing fields.
func normalizeQuestion(q modelQuestion) domain.QuizQuestion {
	options := q.Options
	if len(options) > 4 {
		options = options[:4]
	}
	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = domain.DefaultDifficulty
	}
	return domain.QuizQuestion{
		Question:    q.Question,
		Options:     options,
		Answer:      q.Answer,
		Difficulty:  difficulty,
		Explanation: q.Explanation,
	}
}

// formatPreviousQuestions renders a numbered list for the supplementary
// prompt, or the literal "None" when nothing has been accumulated yet.
func formatPreviousQuestions(quiz []domain.QuizQuestion) string {
	if len(quiz) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(quiz))
	for i, q := range quiz {
		lines = append(lines, fmt.Sprintf("- %d. %s", i+1, q.Question))
	}
	return strings.Join(lines, "\n")
}
