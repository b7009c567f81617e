package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdeck/internal/core"
	"newsdeck/internal/news/models"
)

// ErrArticleNotFound is returned when an operation targets a url that has no
// cached row.
var ErrArticleNotFound = errors.New("article not found")

// ArticleStore handles durable storage of cached articles.
//
// Reads are served from SQLite; the Watch* queries are live: every committed
// write re-emits a fresh snapshot to every open subscription. Writes go
// through single transactions, so a reader sees either the pre-write or the
// post-write state of a page merge, never a mix.
type ArticleStore struct {
	db     *core.Database
	logger *core.Logger
	hub    *changeHub
}

// NewArticleStore creates a new article store
func NewArticleStore(db *core.Database, logger *core.Logger) *ArticleStore {
	return &ArticleStore{
		db:     db,
		logger: logger,
		hub:    newChangeHub(),
	}
}

const articleColumns = `url, source_name, author, title, description, image_url, published_at, content, category, is_favorite, fetched_at`

// UpsertMany inserts or blindly replaces whole rows by url. It carries no
// merge policy: an existing row's favorite flag is overwritten with whatever
// the incoming record says. Callers that need to preserve locally-owned state
// use ApplyPage instead.
func (s *ArticleStore) UpsertMany(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return upsertArticles(ctx, tx, articles, false)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert articles: %w", err)
	}

	s.hub.broadcast()
	return nil
}

// DeleteAll empties the article cache.
func (s *ArticleStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecWithTimeout(ctx, `DELETE FROM articles`)
	if err != nil {
		return fmt.Errorf("failed to delete articles: %w", err)
	}

	s.hub.broadcast()
	return nil
}

// SetFavorite updates exactly the favorite column for one row.
func (s *ArticleStore) SetFavorite(ctx context.Context, url string, isFavorite bool) error {
	result, err := s.db.ExecWithTimeout(ctx,
		`UPDATE articles SET is_favorite = ? WHERE url = ?`, isFavorite, url)
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrArticleNotFound
	}

	s.hub.broadcast()
	return nil
}

// FavoritesAmong returns the subset of urls that are currently favorited.
func (s *ArticleStore) FavoritesAmong(ctx context.Context, urls []string) (map[string]bool, error) {
	favorites := make(map[string]bool)
	if len(urls) == 0 {
		return favorites, nil
	}

	placeholders := make([]string, len(urls))
	args := make([]interface{}, len(urls))
	for i, url := range urls {
		placeholders[i] = "?"
		args[i] = url
	}

	query := `SELECT url FROM articles WHERE is_favorite = 1 AND url IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan favorite url: %w", err)
		}
		favorites[url] = true
	}

	return favorites, rows.Err()
}

// ApplyPage commits one fetched page in a single transaction.
//
// If evict is set, rows of the same category that are absent from the
// incoming set are deleted first; rows of other categories are never touched.
// The upsert promotes is_favorite with OR against the current row, so a
// favorite committed between the caller's read and this write survives. The
// flag is never reset by a page merge.
func (s *ArticleStore) ApplyPage(ctx context.Context, category string, articles []models.Article, evict bool) error {
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if evict {
			if err := evictCategoryExcept(ctx, tx, category, articles); err != nil {
				return err
			}
		}
		return upsertArticles(ctx, tx, articles, true)
	})
	if err != nil {
		return fmt.Errorf("failed to apply page for category %s: %w", category, err)
	}

	s.hub.broadcast()
	return nil
}

func evictCategoryExcept(ctx context.Context, tx *sql.Tx, category string, keep []models.Article) error {
	args := []interface{}{category}
	query := `DELETE FROM articles WHERE category = ?`

	if len(keep) > 0 {
		placeholders := make([]string, len(keep))
		for i, article := range keep {
			placeholders[i] = "?"
			args = append(args, article.URL)
		}
		query += ` AND url NOT IN (` + strings.Join(placeholders, ",") + `)`
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to evict category %s: %w", category, err)
	}
	return nil
}

func upsertArticles(ctx context.Context, tx *sql.Tx, articles []models.Article, preserveFavorite bool) error {
	favoriteExpr := `excluded.is_favorite`
	if preserveFavorite {
		favoriteExpr = `(articles.is_favorite OR excluded.is_favorite)`
	}

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			source_name = excluded.source_name,
			author = excluded.author,
			title = excluded.title,
			description = excluded.description,
			image_url = excluded.image_url,
			published_at = excluded.published_at,
			content = excluded.content,
			category = excluded.category,
			is_favorite = ` + favoriteExpr + `,
			fetched_at = excluded.fetched_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, article := range articles {
		fetchedAt := article.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			article.URL,
			article.SourceName,
			article.Author,
			article.Title,
			article.Description,
			article.ImageURL,
			article.PublishedAt,
			article.Content,
			article.Category,
			article.IsFavorite,
			fetchedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert article %s: %w", article.URL, err)
		}
	}

	return nil
}

// ListAll returns every cached article, newest first.
func (s *ArticleStore) ListAll(ctx context.Context) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY published_at DESC`
	return s.queryArticles(ctx, query)
}

// ListByCategory returns the cached articles for one category, newest first.
func (s *ArticleStore) ListByCategory(ctx context.Context, category string) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE category = ? ORDER BY published_at DESC`
	return s.queryArticles(ctx, query, category)
}

// ListFavorites returns every favorited article, newest first.
func (s *ArticleStore) ListFavorites(ctx context.Context) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE is_favorite = 1 ORDER BY published_at DESC`
	return s.queryArticles(ctx, query)
}

// GetByURL returns the cached row for a url, or ErrArticleNotFound.
func (s *ArticleStore) GetByURL(ctx context.Context, url string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE url = ? LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, url)
	article, err := scanArticle(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, query string, args ...interface{}) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		article, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

func scanArticle(scan func(dest ...interface{}) error) (*models.Article, error) {
	var article models.Article
	var author, description, imageURL, content sql.NullString

	err := scan(
		&article.URL,
		&article.SourceName,
		&author,
		&article.Title,
		&description,
		&imageURL,
		&article.PublishedAt,
		&content,
		&article.Category,
		&article.IsFavorite,
		&article.FetchedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Author = author.String
	article.Description = description.String
	article.ImageURL = imageURL.String
	article.Content = content.String

	return &article, nil
}

// WatchAll streams snapshots of the whole cache, newest first. The current
// snapshot is emitted immediately, then a fresh one after every committed
// write, until ctx is cancelled.
func (s *ArticleStore) WatchAll(ctx context.Context) <-chan []models.Article {
	return s.watchList(ctx, func(ctx context.Context) ([]models.Article, error) {
		return s.ListAll(ctx)
	})
}

// WatchByCategory streams snapshots of one category's cached articles.
func (s *ArticleStore) WatchByCategory(ctx context.Context, category string) <-chan []models.Article {
	return s.watchList(ctx, func(ctx context.Context) ([]models.Article, error) {
		return s.ListByCategory(ctx, category)
	})
}

// WatchFavorites streams snapshots of the favorited articles.
func (s *ArticleStore) WatchFavorites(ctx context.Context) <-chan []models.Article {
	return s.watchList(ctx, func(ctx context.Context) ([]models.Article, error) {
		return s.ListFavorites(ctx)
	})
}

// WatchByURL streams the row for one url; nil is emitted while the row is
// absent or after it has been evicted.
func (s *ArticleStore) WatchByURL(ctx context.Context, url string) <-chan *models.Article {
	out := make(chan *models.Article, 1)
	id, signal := s.hub.subscribe()

	go func() {
		defer close(out)
		defer s.hub.unsubscribe(id)

		for {
			article, err := s.GetByURL(ctx, url)
			if err != nil && !errors.Is(err, ErrArticleNotFound) {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("Failed to query watched article", "url", url, "error", err)
			} else {
				select {
				case out <- article:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return out
}

func (s *ArticleStore) watchList(ctx context.Context, query func(context.Context) ([]models.Article, error)) <-chan []models.Article {
	out := make(chan []models.Article, 1)
	id, signal := s.hub.subscribe()

	go func() {
		defer close(out)
		defer s.hub.unsubscribe(id)

		for {
			snapshot, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("Failed to query watched articles", "error", err)
			} else {
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return out
}
