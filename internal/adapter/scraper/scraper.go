package scraper

import (
	"context"
	"strings"
	"unicode/utf8"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const previewMaxChars = 300

// WikipediaScraper implements domain.ArticleScraper using goquery.
type WikipediaScraper struct {
	fetcher *fetcher
	cfg     config.ScraperConfig
}

// NewWikipediaScraper creates a new scraper with the configured timeouts.
func NewWikipediaScraper(cfg config.ScraperConfig) domain.ArticleScraper {
	return &WikipediaScraper{
		fetcher: newFetcher(),
		cfg:     cfg,
	}
}

// Scrape implements domain.ArticleScraper
func (s *WikipediaScraper) Scrape(ctx context.Context, url string) (*domain.Article, error) {
	l := logger.Get()
	l.Info("Scraping Wikipedia article", zap.String("url", url))

	rawHTML, err := s.fetcher.fetch(ctx, url, s.cfg.FetchTimeout)
	if err != nil {
		l.Error("Failed to fetch article", zap.String("url", url), zap.Error(err))
		return nil, err
	}

	result, err := cleanArticleHTML(rawHTML)
	if err != nil {
		return nil, domain.NewInternalError("Failed to parse article HTML", err)
	}
	if result.CleanedText == "" {
		l.Warn("Could not find main content selector", zap.String("url", url))
	}

	sections, err := extractSections(result.CleanedHTML)
	if err != nil {
		return nil, domain.NewInternalError("Failed to extract article sections", err)
	}

	l.Info("Scraped article",
		zap.String("title", result.Title),
		zap.Int("chars", len(result.CleanedText)),
		zap.Int("sections", len(sections)))

	return &domain.Article{
		URL:         url,
		Title:       result.Title,
		Sections:    sections,
		CleanedText: result.CleanedText,
		RawHTML:     rawHTML,
	}, nil
}

// Preview implements domain.ArticleScraper. It uses the shorter preview
// timeout and reports fetch problems in the result instead of failing.
func (s *WikipediaScraper) Preview(ctx context.Context, url string) *domain.ArticlePreview {
	html, err := s.fetcher.fetch(ctx, url, s.cfg.PreviewTimeout)
	if err != nil {
		logger.Get().Warn("Article preview fetch failed", zap.String("url", url), zap.Error(err))
		return &domain.ArticlePreview{Valid: false, Error: err.Error()}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &domain.ArticlePreview{Valid: false, Error: err.Error()}
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		title = "Unknown"
	}

	preview := ""
	firstParagraph := doc.Find(mainContentSelector + " > p").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return !sel.HasClass("mw-empty-elt")
	}).First()
	if firstParagraph.Length() > 0 {
		text := strings.TrimSpace(firstParagraph.Text())
		if len(text) > previewMaxChars {
			// Back off to a rune boundary so a multi-byte character is
			// never split.
			cut := previewMaxChars
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			preview = text[:cut] + "..."
		} else {
			preview = text
		}
	}

	return &domain.ArticlePreview{
		Title:   title,
		Preview: preview,
		Valid:   true,
	}
}
