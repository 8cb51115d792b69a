// Package news serves the market-news feed. When an upstream feed is
// configured it is fetched with retries; otherwise, or on failure, a canned
// set of articles keeps the feed populated.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/pkg/retrier"
)

const (
	requestTimeout = 10 * time.Second
	marketQuery    = "stock market OR investing OR trading"
	marketPageSize = 10
	searchPageSize = 15
)

// Config points the service at an optional upstream feed. An empty BaseURL
// disables fetching entirely.
type Config struct {
	BaseURL string
	APIKey  string
}

type Service struct {
	cfg     Config
	client  *http.Client
	retrier *retrier.Retrier
	logger  *zap.Logger
}

func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		retrier: retrier.New(
			retrier.WithMaxAttempts(3),
			retrier.WithBaseDelay(300*time.Millisecond),
		),
		logger: logger,
	}, nil
}

// Market returns the general market feed.
func (s *Service) Market(ctx context.Context) []domain.NewsArticle {
	return s.fetchOrCanned(ctx, marketQuery, marketPageSize)
}

// Search returns articles matching the query. An empty query falls back to
// the market feed.
func (s *Service) Search(ctx context.Context, query string) []domain.NewsArticle {
	if query == "" {
		return s.Market(ctx)
	}
	return s.fetchOrCanned(ctx, query, searchPageSize)
}

func (s *Service) fetchOrCanned(ctx context.Context, query string, pageSize int) []domain.NewsArticle {
	if s.cfg.BaseURL == "" {
		return cannedArticles()
	}

	articles, err := retrier.DoWithData(s.retrier, ctx, func(ctx context.Context) ([]domain.NewsArticle, error) {
		return s.fetch(ctx, query, pageSize)
	})
	if err != nil {
		s.logger.Warn("news feed unavailable, using canned articles",
			zap.String("query", query), zap.Error(err))
		return cannedArticles()
	}
	return articles
}

// upstreamResponse mirrors the newsapi.org "everything" payload shape.
type upstreamResponse struct {
	Articles []struct {
		Title  string `json:"title"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		URL         string    `json:"url"`
		Description string    `json:"description"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (s *Service) fetch(ctx context.Context, query string, pageSize int) ([]domain.NewsArticle, error) {
	u := fmt.Sprintf("%s?q=%s&sortBy=publishedAt&language=en&pageSize=%d&apiKey=%s",
		s.cfg.BaseURL, url.QueryEscape(query), pageSize, s.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build news request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch news feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("news feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read news response")
	}

	var upstream upstreamResponse
	if err := json.Unmarshal(body, &upstream); err != nil {
		return nil, errors.Wrap(err, "decode news response")
	}

	articles := make([]domain.NewsArticle, 0, len(upstream.Articles))
	for _, a := range upstream.Articles {
		articles = append(articles, domain.NewsArticle{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			Summary:     a.Description,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}

func cannedArticles() []domain.NewsArticle {
	now := time.Now().UTC()
	return []domain.NewsArticle{
		{
			Title:       "Markets steady as investors weigh rate outlook",
			Source:      "Market Desk",
			Summary:     "Major indexes held near record levels while traders priced in the central bank's next move on interest rates.",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		{
			Title:       "Tech earnings season kicks off with upbeat guidance",
			Source:      "Market Desk",
			Summary:     "Early reports from large-cap technology companies beat expectations, lifting sentiment across the sector.",
			PublishedAt: now.Add(-5 * time.Hour),
		},
		{
			Title:       "Energy stocks rally on supply concerns",
			Source:      "Market Desk",
			Summary:     "Crude prices climbed for a third session, pulling oil and gas producers higher.",
			PublishedAt: now.Add(-9 * time.Hour),
		},
		{
			Title:       "What diversification really does for a portfolio",
			Source:      "Investor Education",
			Summary:     "Spreading investments across asset classes smooths returns over time and limits the damage from any single position.",
			PublishedAt: now.Add(-24 * time.Hour),
		},
		{
			Title:       "Understanding dollar-cost averaging",
			Source:      "Investor Education",
			Summary:     "Investing a fixed amount on a schedule removes the temptation to time the market.",
			PublishedAt: now.Add(-36 * time.Hour),
		},
	}
}
