package models

// RemoteArticle is a raw article record as returned by the NewsAPI feed.
// Every field is optional on the wire.
type RemoteArticle struct {
	Source      RemoteSource `json:"source"`
	Author      string       `json:"author"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	ImageURL    string       `json:"urlToImage"`
	PublishedAt string       `json:"publishedAt"`
	Content     string       `json:"content"`
}

// RemoteSource is the nested source object on a remote article record.
type RemoteSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RemotePage is the NewsAPI response envelope for both the top-headlines
// and the everything (search) endpoints.
type RemotePage struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Articles     []RemoteArticle `json:"articles"`
	Code         string          `json:"code,omitempty"`
	Message      string          `json:"message,omitempty"`
}
