// Package api exposes the bookmark service over HTTP: a JSON API for links
// and metadata suggestions, a thumbnail cache endpoint, Prometheus metrics
// and a server-rendered index page.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	recipon "github.com/Shugo117/recipon"
	"github.com/Shugo117/recipon/db"
	"github.com/Shugo117/recipon/models"
	"github.com/Shugo117/recipon/storage"
)

// Store is the bookmark persistence layer used by the server
type Store interface {
	SaveLink(req models.SaveLinkRequest) (*models.RecipeLink, db.SaveOutcome, error)
	GetByID(id string) (*models.RecipeLink, error)
	GetByURL(url string) (*models.RecipeLink, error)
	UpdateLink(id string, req models.UpdateLinkRequest) (*models.RecipeLink, error)
	DeleteByID(id string) error
	List(category string, limit, offset int) ([]*models.RecipeLink, error)
	Count() (int, error)
	CountByCategory() (map[string]int, error)
	SaveThumbnail(thumb *models.Thumbnail) error
	GetThumbnailByURL(url string) (*models.Thumbnail, error)
}

// Enricher resolves metadata suggestions and thumbnail images for URLs
type Enricher interface {
	Enrich(ctx context.Context, pageURL string) models.MetaSuggestion
	LookupImage(ctx context.Context, pageURL string) (string, bool)
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

// Server represents the API server
type Server struct {
	store       Store
	enricher    Enricher
	storage     storage.Backend
	addr        string
	server      *http.Server
	mux         *http.ServeMux
	corsEnabled bool
}

// Config contains server configuration
type Config struct {
	Addr          string
	DBConfig      db.Config
	EnrichConfig  recipon.Config
	StorageConfig storage.Config
	Backend       storage.Backend // Overrides StorageConfig when set (e.g. S3)
	CORSEnabled   bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		EnrichConfig:  recipon.DefaultConfig(),
		StorageConfig: storage.DefaultConfig(),
		CORSEnabled:   true,
	}
}

// NewServer creates a new API server
func NewServer(config Config) (*Server, error) {
	database, err := db.New(config.DBConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	backend := config.Backend
	if backend == nil {
		storageInstance, err := storage.New(config.StorageConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		backend = storageInstance
	}

	s := newServer(database, recipon.New(config.EnrichConfig), backend, config.Addr, config.CORSEnabled)
	return s, nil
}

// newServer wires a server from its dependencies; tests supply fakes here
func newServer(store Store, enricher Enricher, backend storage.Backend, addr string, corsEnabled bool) *Server {
	s := &Server{
		store:       store,
		enricher:    enricher,
		storage:     backend,
		addr:        addr,
		mux:         http.NewServeMux(),
		corsEnabled: corsEnabled,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.middleware(s.mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/meta", s.handleMeta)
	s.mux.HandleFunc("/thumb", s.handleThumb)
	s.mux.HandleFunc("/api/links", s.handleLinks)
	s.mux.HandleFunc("/api/links/", s.handleLink) // Handles /api/links/{id}
	s.mux.HandleFunc("/api/categories", s.handleCategories)
}

// Start starts the API server
func (s *Server) Start() error {
	slog.Info("starting API server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down API server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// middleware applies common middleware to all routes
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		// Logging (skip health checks to reduce noise)
		start := time.Now()
		next.ServeHTTP(w, r)
		if r.URL.Path != "/health" {
			slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := s.store.Count()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get count")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"count":  count,
		"time":   time.Now(),
	})
}

// handleMeta resolves a metadata suggestion for a URL. The response always
// has both fields: title is null when nothing was extracted and category
// falls back to the default, so the form prefill never errors.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	suggestion := s.enricher.Enrich(r.Context(), url)
	respondJSON(w, http.StatusOK, suggestion)
}

// SaveLinkResponse wraps a saved bookmark with what the save actually did
type SaveLinkResponse struct {
	Link   *models.RecipeLink `json:"link"`
	Result db.SaveOutcome     `json:"result"`
}

// handleLinks handles listing and creating bookmarks
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListLinks(w, r)
	case http.MethodPost:
		s.handleSaveLink(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSaveLink creates or upserts a bookmark. A request without a title is
// filled from metadata enrichment first.
func (s *Server) handleSaveLink(w http.ResponseWriter, r *http.Request) {
	var req models.SaveLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		suggestion := s.enricher.Enrich(r.Context(), req.URL)
		if suggestion.Title != nil {
			req.Title = *suggestion.Title
		}
		if strings.TrimSpace(req.Category) == "" {
			req.Category = suggestion.Category
		}
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required and could not be resolved")
		return
	}

	link, outcome, err := s.store.SaveLink(req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save link")
		return
	}

	status := http.StatusOK
	if outcome == db.SaveCreated {
		status = http.StatusCreated
	}
	respondJSON(w, status, SaveLinkResponse{Link: link, Result: outcome})
}

// handleListLinks lists bookmarks with pagination and a category filter
func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		fmt.Sscanf(offsetStr, "%d", &offset)
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	category := r.URL.Query().Get("category")
	if category != "" && !models.IsCategory(category) {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	links, err := s.store.List(category, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if links == nil {
		links = []*models.RecipeLink{}
	}

	count, _ := s.store.Count()

	respondJSON(w, http.StatusOK, map[string]any{
		"links":  links,
		"total":  count,
		"limit":  limit,
		"offset": offset,
	})
}

// handleLink handles GET/PUT/DELETE for a single bookmark
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetLink(w, r, id)
	case http.MethodPut:
		s.handleUpdateLink(w, r, id)
	case http.MethodDelete:
		s.handleDeleteLink(w, r, id)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request, id string) {
	link, err := s.store.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if link == nil {
		respondError(w, http.StatusNotFound, "link not found")
		return
	}
	respondJSON(w, http.StatusOK, link)
}

func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request, id string) {
	var req models.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	link, err := s.store.UpdateLink(id, req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update link")
		return
	}
	if link == nil {
		respondError(w, http.StatusNotFound, "link not found")
		return
	}
	respondJSON(w, http.StatusOK, link)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request, id string) {
	err := s.store.DeleteByID(id)
	if err != nil {
		if strings.Contains(err.Error(), "no link found") {
			respondError(w, http.StatusNotFound, "link not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete link")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "link deleted successfully",
	})
}

// handleCategories returns the fixed category set with per-category counts
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	counts, err := s.store.CountByCategory()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	type categoryCount struct {
		Key   string `json:"key"`
		Emoji string `json:"emoji"`
		Count int    `json:"count"`
	}

	result := make([]categoryCount, 0, len(models.Categories))
	for _, c := range models.Categories {
		result = append(result, categoryCount{Key: c.Key, Emoji: c.Emoji, Count: counts[c.Key]})
	}

	respondJSON(w, http.StatusOK, map[string]any{"categories": result})
}

// handleThumb serves a cached thumbnail for a bookmarked page. The page's
// representative image is resolved, downloaded once, stored, and served with
// long-lived cache headers on later requests. Every failure mode is a plain
// 404 so a broken image upstream degrades to a missing thumbnail.
func (s *Server) handleThumb(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	imageURL, ok := s.enricher.LookupImage(r.Context(), pageURL)
	if !ok {
		http.NotFound(w, r)
		return
	}

	thumb, err := s.store.GetThumbnailByURL(imageURL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	if thumb == nil {
		thumb = s.cacheThumbnail(r.Context(), imageURL)
		if thumb == nil {
			http.NotFound(w, r)
			return
		}
	}

	data, err := s.storage.ReadThumb(thumb.FilePath)
	if err != nil {
		slog.Warn("failed to read cached thumbnail", "path", thumb.FilePath, "error", err)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", thumb.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// cacheThumbnail downloads an image and records it in storage and the
// database. Returns nil when the image cannot be fetched or stored.
func (s *Server) cacheThumbnail(ctx context.Context, imageURL string) *models.Thumbnail {
	data, contentType, err := s.enricher.FetchImage(ctx, imageURL)
	if err != nil {
		slog.Debug("thumbnail fetch failed", "url", imageURL, "error", err)
		return nil
	}

	width, height := recipon.ImageDims(data)

	filePath, err := s.storage.SaveThumb(data, uuid.New().String(), contentType)
	if err != nil {
		slog.Warn("failed to store thumbnail", "url", imageURL, "error", err)
		return nil
	}

	thumb := &models.Thumbnail{
		URL:         imageURL,
		FilePath:    filePath,
		ContentType: contentType,
		Width:       width,
		Height:      height,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.SaveThumbnail(thumb); err != nil {
		slog.Warn("failed to record thumbnail", "url", imageURL, "error", err)
		return nil
	}

	return thumb
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
