package migrations

import (
	"newsdeck/internal/core"
)

// Migration001CreateNewsTables creates the article cache table
var Migration001CreateNewsTables = core.Migration{
	Version:     1,
	Name:        "create_news_tables",
	Description: "Create the offline article cache table",
	UpSQL: `
		-- Cached articles, one row per url
		CREATE TABLE IF NOT EXISTS articles (
			url TEXT PRIMARY KEY,
			source_name TEXT NOT NULL DEFAULT 'Unknown',
			author TEXT,
			title TEXT NOT NULL,
			description TEXT,
			image_url TEXT,
			published_at TEXT NOT NULL DEFAULT '',
			content TEXT,
			category TEXT NOT NULL DEFAULT 'general',
			is_favorite BOOLEAN NOT NULL DEFAULT 0,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
		CREATE INDEX IF NOT EXISTS idx_articles_is_favorite ON articles(is_favorite);
		CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
	`,
	DownSQL: `
		DROP INDEX IF EXISTS idx_articles_published_at;
		DROP INDEX IF EXISTS idx_articles_is_favorite;
		DROP INDEX IF EXISTS idx_articles_category;

		DROP TABLE IF EXISTS articles;
	`,
}
