package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"newsdeck/internal/core"
	"newsdeck/internal/news/models"
)

// ErrFetchFailed wraps any transport, HTTP or upstream-status failure from
// the remote feed. The upstream message is passed through, not parsed.
var ErrFetchFailed = errors.New("fetch failed")

// FeedClient is the remote feed capability consumed by the sync repository.
type FeedClient interface {
	TopHeadlines(ctx context.Context, category string, page int) ([]models.RemoteArticle, error)
	Search(ctx context.Context, query string, page int) ([]models.RemoteArticle, error)
}

// NewsAPIClient fetches headline and search pages from the NewsAPI service.
type NewsAPIClient struct {
	client *http.Client
	logger *core.Logger
	config *core.FeedConfig
}

// NewNewsAPIClient creates a new NewsAPI client
func NewNewsAPIClient(logger *core.Logger, config *core.FeedConfig) *NewsAPIClient {
	return &NewsAPIClient{
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
		config: config,
	}
}

// TopHeadlines fetches one page of top headlines for a category.
func (c *NewsAPIClient) TopHeadlines(ctx context.Context, category string, page int) ([]models.RemoteArticle, error) {
	params := url.Values{}
	params.Set("country", c.config.Country)
	if category != "" {
		params.Set("category", category)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(c.config.PageSize))

	return c.fetchPage(ctx, "/v2/top-headlines", params)
}

// Search fetches one page of free-text search results.
func (c *NewsAPIClient) Search(ctx context.Context, query string, page int) ([]models.RemoteArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(c.config.PageSize))

	return c.fetchPage(ctx, "/v2/everything", params)
}

func (c *NewsAPIClient) fetchPage(ctx context.Context, path string, params url.Values) ([]models.RemoteArticle, error) {
	requestURL := c.config.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Api-Key", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %s", ErrFetchFailed, err.Error())
	}

	var page models.RemotePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %s", ErrFetchFailed, err.Error())
	}

	if resp.StatusCode != http.StatusOK || page.Status != "ok" {
		message := page.Message
		if message == "" {
			message = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, message)
	}

	c.logger.Info("Fetched feed page", "path", path, "articles", len(page.Articles))
	return page.Articles, nil
}
