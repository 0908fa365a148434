// Command warmup pre-generates quizzes for a list of Wikipedia URLs so that
// interactive requests hit the cache. URLs are read one per line from a file.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"wikiquiz/internal/adapter"
	"wikiquiz/internal/adapter/quizgen"
	"wikiquiz/internal/adapter/scraper"
	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/database"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/repository"
	"wikiquiz/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	urlFile := flag.String("file", "urls.txt", "file with one Wikipedia URL per line")
	count := flag.Int("count", 0, "questions per quiz (0 uses the configured default)")
	concurrency := flag.Int("concurrency", 3, "number of quizzes generated in parallel")
	timeout := flag.Duration("timeout", 5*time.Minute, "per-quiz generation timeout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	urls, err := readURLs(*urlFile)
	if err != nil {
		appLogger.Fatal("Failed to read URL file", zap.String("file", *urlFile), zap.Error(err))
	}
	if len(urls) == 0 {
		appLogger.Warn("No URLs to warm up", zap.String("file", *urlFile))
		return
	}

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var cacheAdapter domain.Cache
	if cfg.Quiz.CacheEnabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
	}

	generator, err := quizgen.NewGeminiQuizGenerator(context.Background(), cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create quiz generator", zap.Error(err))
	}

	quizService := service.NewQuizService(
		repository.NewSQLXQuizRepository(db),
		repository.NewSQLXAttemptRepository(db),
		scraper.NewWikipediaScraper(cfg.Scraper),
		generator,
		cacheAdapter,
		cfg,
	)

	numQuestions := *count
	if numQuestions <= 0 {
		numQuestions = cfg.Quiz.DefaultCount
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)

	start := time.Now()
	for _, url := range urls {
		url := url
		g.Go(func() error {
			quizCtx, cancel := context.WithTimeout(ctx, *timeout)
			defer cancel()

			resp, err := quizService.GenerateQuiz(quizCtx, "", &dto.GenerateQuizRequest{
				URL:          url,
				NumQuestions: numQuestions,
			})
			if err != nil {
				// One bad URL should not abort the batch
				appLogger.Error("Warmup failed for URL", zap.String("url", url), zap.Error(err))
				return nil
			}

			appLogger.Info("Warmed up quiz",
				zap.String("url", url),
				zap.String("quizID", resp.ID),
				zap.Int("questions", len(resp.Quiz)),
				zap.Bool("cached", resp.Cached))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		appLogger.Fatal("Warmup aborted", zap.Error(err))
	}

	appLogger.Info("Warmup completed",
		zap.Int("urls", len(urls)),
		zap.Duration("elapsed", time.Since(start)))
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}
