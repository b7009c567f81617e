package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"newsdeck/internal/core"
	"newsdeck/internal/news/models"
	"newsdeck/internal/news/services"
)

// Handlers contains the news HTTP handlers
type Handlers struct {
	logger     *core.Logger
	repository *services.SyncRepository
	refresher  *services.Refresher
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, repository *services.SyncRepository, refresher *services.Refresher) *Handlers {
	return &Handlers{
		logger:     logger,
		repository: repository,
		refresher:  refresher,
	}
}

// ArticleListResponse is the envelope for cached article listings
type ArticleListResponse struct {
	Articles []models.Article `json:"articles"`
	Count    int              `json:"count"`
}

// FavoriteRequest is the body for the favorite toggle endpoint
type FavoriteRequest struct {
	URL        string `json:"url"`
	IsFavorite bool   `json:"is_favorite"`
}

// FetchHeadlines fetches a headlines page from the remote feed and merges it
// into the cache.
func (h *Handlers) FetchHeadlines(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	page := queryAsInt(r, "page", 1)

	result, err := h.repository.FetchHeadlines(r.Context(), category, page)
	if err != nil {
		h.writeNewsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Refresh runs one full refresh cycle over the configured categories and
// returns when it completes.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.refresher.RefreshAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// Search returns a transient page of search results; nothing is cached.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("Query parameter q is required", nil))
		return
	}
	page := queryAsInt(r, "page", 1)

	articles, err := h.repository.Search(r.Context(), query, page)
	if err != nil {
		h.writeNewsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Count: len(articles)})
}

// ListCached returns the whole article cache, newest first.
func (h *Handlers) ListCached(w http.ResponseWriter, r *http.Request) {
	articles, err := h.repository.CachedArticles(r.Context())
	if err != nil {
		h.writeNewsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Count: len(articles)})
}

// ListByCategory returns the cached articles for one category.
func (h *Handlers) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	articles, err := h.repository.CachedArticlesByCategory(r.Context(), category)
	if err != nil {
		h.writeNewsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Count: len(articles)})
}

// ListFavorites returns every favorited article.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	articles, err := h.repository.FavoriteArticles(r.Context())
	if err != nil {
		h.writeNewsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Count: len(articles)})
}

// GetArticle returns one cached article by url.
func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("Query parameter url is required", nil))
		return
	}

	article, err := h.repository.ArticleByURL(r.Context(), url)
	if err != nil {
		h.writeNewsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// SetFavorite updates the favorite flag on one cached article.
func (h *Handlers) SetFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("Invalid request body", err))
		return
	}
	if req.URL == "" {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError("url is required", nil))
		return
	}

	if err := h.repository.SetFavorite(r.Context(), req.URL, req.IsFavorite); err != nil {
		h.writeNewsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeNewsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrArticleNotFound):
		core.WriteErrorResponse(w, http.StatusNotFound, core.NewNotFoundError("Article not found", err))
	case errors.Is(err, services.ErrFetchFailed):
		core.WriteErrorResponse(w, http.StatusBadGateway, core.NewFetchFailedError(err.Error(), err))
	default:
		h.logger.Error("News request failed", "error", err)
		core.WriteErrorResponse(w, http.StatusInternalServerError, core.NewInternalError("Request failed", err))
	}
}

func queryAsInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
