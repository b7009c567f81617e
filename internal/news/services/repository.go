package services

import (
	"context"
	"sync"

	"newsdeck/internal/core"
	"newsdeck/internal/news/models"
)

// SyncRepository bridges the remote feed and the local article cache.
//
// Headline fetches are merged into the cache with a favorite-preserving
// policy: a page-1 fetch evicts only the stale rows of its own category, and
// no merge ever resets a favorite flag. Search results bypass the cache
// entirely and are returned as a transient view.
type SyncRepository struct {
	client FeedClient
	store  *ArticleStore
	logger *core.Logger

	// Merge bookkeeping. A fetch dispatched before an already-committed
	// fetch for the same category is stale and its merge is discarded:
	// last-committed-wins per category. The mutex also covers the apply
	// step so the check and the commit are atomic.
	mu         sync.Mutex
	dispatched map[string]uint64
	committed  map[string]uint64
}

// NewSyncRepository creates a new sync repository
func NewSyncRepository(client FeedClient, store *ArticleStore, logger *core.Logger) *SyncRepository {
	return &SyncRepository{
		client:     client,
		store:      store,
		logger:     logger,
		dispatched: make(map[string]uint64),
		committed:  make(map[string]uint64),
	}
}

// FetchHeadlines fetches one page of top headlines for a category and merges
// it into the cache. On any remote failure the cache is left untouched.
//
// The returned page holds only the fetched records, not the whole cache, so
// the caller can detect the last page (empty result) and drive pagination.
func (r *SyncRepository) FetchHeadlines(ctx context.Context, category string, page int) (*models.HeadlinesPage, error) {
	if category == "" {
		category = models.DefaultCategory
	}
	if page < 1 {
		page = 1
	}

	seq := r.dispatch(category)

	records, err := r.client.TopHeadlines(ctx, category, page)
	if err != nil {
		return nil, err
	}

	articles := mapRemoteArticles(records, category)

	// Carry known favorites into the incoming set before writing, so the
	// merged rows (and the returned view) keep the locally-owned flag.
	urls := make([]string, len(articles))
	for i := range articles {
		urls[i] = articles[i].URL
	}
	favorites, err := r.store.FavoritesAmong(ctx, urls)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].IsFavorite = favorites[articles[i].URL]
	}

	if err := r.commit(ctx, category, seq, articles, page == 1); err != nil {
		return nil, err
	}

	return &models.HeadlinesPage{
		Articles: articles,
		Category: category,
		Page:     page,
		HasMore:  len(articles) > 0,
	}, nil
}

func (r *SyncRepository) dispatch(category string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dispatched[category]++
	return r.dispatched[category]
}

func (r *SyncRepository) commit(ctx context.Context, category string, seq uint64, articles []models.Article, evict bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if seq <= r.committed[category] {
		// A fetch dispatched after this one already committed; applying
		// this merge now would clobber newer state.
		r.logger.Debug("Discarding superseded merge", "category", category, "seq", seq)
		return nil
	}

	if err := r.store.ApplyPage(ctx, category, articles, evict); err != nil {
		return err
	}

	r.committed[category] = seq
	r.logger.Info("Merged headlines page", "category", category, "articles", len(articles), "evicted", evict)
	return nil
}

// Search fetches one page of free-text search results. Results are a live,
// ephemeral view: they are never persisted and never merged with cached
// favorite state.
func (r *SyncRepository) Search(ctx context.Context, query string, page int) ([]models.Article, error) {
	if page < 1 {
		page = 1
	}

	records, err := r.client.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}

	return mapRemoteArticles(records, models.DefaultCategory), nil
}

// SetFavorite updates the favorite flag for one cached article. It is safe to
// call concurrently with an in-flight headline merge for the same url.
func (r *SyncRepository) SetFavorite(ctx context.Context, url string, isFavorite bool) error {
	return r.store.SetFavorite(ctx, url, isFavorite)
}

// CachedArticles returns the current cache contents, newest first.
func (r *SyncRepository) CachedArticles(ctx context.Context) ([]models.Article, error) {
	return r.store.ListAll(ctx)
}

// CachedArticlesByCategory returns the cached articles for one category.
func (r *SyncRepository) CachedArticlesByCategory(ctx context.Context, category string) ([]models.Article, error) {
	return r.store.ListByCategory(ctx, category)
}

// FavoriteArticles returns every favorited article.
func (r *SyncRepository) FavoriteArticles(ctx context.Context) ([]models.Article, error) {
	return r.store.ListFavorites(ctx)
}

// ArticleByURL returns the cached row for one url, or ErrArticleNotFound.
func (r *SyncRepository) ArticleByURL(ctx context.Context, url string) (*models.Article, error) {
	return r.store.GetByURL(ctx, url)
}

// WatchCachedArticles streams cache snapshots until ctx is cancelled.
func (r *SyncRepository) WatchCachedArticles(ctx context.Context) <-chan []models.Article {
	return r.store.WatchAll(ctx)
}

// WatchArticlesByCategory streams snapshots of one category.
func (r *SyncRepository) WatchArticlesByCategory(ctx context.Context, category string) <-chan []models.Article {
	return r.store.WatchByCategory(ctx, category)
}

// WatchFavoriteArticles streams snapshots of the favorited articles.
func (r *SyncRepository) WatchFavoriteArticles(ctx context.Context) <-chan []models.Article {
	return r.store.WatchFavorites(ctx)
}

// WatchArticleByURL streams the row for one url; nil while absent.
func (r *SyncRepository) WatchArticleByURL(ctx context.Context, url string) <-chan *models.Article {
	return r.store.WatchByURL(ctx, url)
}

// mapRemoteArticles converts raw feed records into cacheable articles.
// Records without a url have no cache key and are dropped.
func mapRemoteArticles(records []models.RemoteArticle, category string) []models.Article {
	articles := make([]models.Article, 0, len(records))
	for _, record := range records {
		if record.URL == "" {
			continue
		}

		sourceName := record.Source.Name
		if sourceName == "" {
			sourceName = "Unknown"
		}

		articles = append(articles, models.Article{
			URL:         record.URL,
			SourceName:  sourceName,
			Author:      record.Author,
			Title:       record.Title,
			Description: record.Description,
			ImageURL:    record.ImageURL,
			PublishedAt: record.PublishedAt,
			Content:     record.Content,
			Category:    category,
			IsFavorite:  false,
		})
	}
	return articles
}
