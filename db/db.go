package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/Shugo117/recipon/models"
)

// DB wraps the database connection and provides data access methods
type DB struct {
	conn *sql.DB
}

// Config contains database configuration
type Config struct {
	DSN string // PostgreSQL connection string
}

// SaveOutcome tells a caller what SaveLink actually did with the request
type SaveOutcome string

const (
	SaveCreated   SaveOutcome = "created"
	SaveUpdated   SaveOutcome = "updated"
	SaveDuplicate SaveOutcome = "duplicate"
)

// New creates a new database connection
func New(config Config) (*DB, error) {
	conn, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	// Run PostgreSQL migrations
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying database connection for metrics collection
func (db *DB) DB() *sql.DB {
	return db.conn
}

// SaveLink creates a bookmark for a URL, keyed by the URL itself. Saving a
// URL that already exists updates its title and category; re-saving with
// identical fields writes nothing and reports a duplicate.
func (db *DB) SaveLink(req models.SaveLinkRequest) (*models.RecipeLink, SaveOutcome, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, "", fmt.Errorf("url is required")
	}
	title := strings.TrimSpace(req.Title)
	category := models.NormalizeCategory(req.Category)

	existing, err := db.GetByURL(url)
	if err != nil {
		return nil, "", err
	}

	if existing != nil {
		if existing.Title == title && existing.Category == category {
			return existing, SaveDuplicate, nil
		}

		now := time.Now().UTC()
		_, err := db.conn.Exec(
			"UPDATE recipe_links SET title = $1, category = $2, updated_at = $3 WHERE id = $4",
			title, category, now, existing.ID,
		)
		if err != nil {
			return nil, "", fmt.Errorf("failed to update link: %w", err)
		}

		existing.Title = title
		existing.Category = category
		existing.UpdatedAt = now
		return existing, SaveUpdated, nil
	}

	now := time.Now().UTC()
	link := &models.RecipeLink{
		ID:        uuid.New().String(),
		URL:       url,
		Title:     title,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = db.conn.Exec(
		`INSERT INTO recipe_links (id, url, title, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		link.ID, link.URL, link.Title, link.Category, link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save link: %w", err)
	}

	return link, SaveCreated, nil
}

// GetByID retrieves a bookmark by ID
func (db *DB) GetByID(id string) (*models.RecipeLink, error) {
	return db.getLink("SELECT id, url, title, category, created_at, updated_at FROM recipe_links WHERE id = $1", id)
}

// GetByURL retrieves a bookmark by URL
func (db *DB) GetByURL(url string) (*models.RecipeLink, error) {
	return db.getLink("SELECT id, url, title, category, created_at, updated_at FROM recipe_links WHERE url = $1", url)
}

func (db *DB) getLink(query string, arg any) (*models.RecipeLink, error) {
	var link models.RecipeLink
	err := db.conn.QueryRow(query, arg).Scan(
		&link.ID, &link.URL, &link.Title, &link.Category, &link.CreatedAt, &link.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}
	return &link, nil
}

// UpdateLink edits the title and category of an existing bookmark
func (db *DB) UpdateLink(id string, req models.UpdateLinkRequest) (*models.RecipeLink, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	category := models.NormalizeCategory(req.Category)
	now := time.Now().UTC()

	result, err := db.conn.Exec(
		"UPDATE recipe_links SET title = $1, category = $2, updated_at = $3 WHERE id = $4",
		title, category, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	return db.GetByID(id)
}

// DeleteByID deletes a bookmark by ID
func (db *DB) DeleteByID(id string) error {
	result, err := db.conn.Exec("DELETE FROM recipe_links WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no link found with id: %s", id)
	}

	return nil
}

// List returns bookmarks newest first, optionally restricted to one category
func (db *DB) List(category string, limit, offset int) ([]*models.RecipeLink, error) {
	query := `
		SELECT id, url, title, category, created_at, updated_at FROM recipe_links
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	args := []any{limit, offset}

	if category != "" {
		query = `
			SELECT id, url, title, category, created_at, updated_at FROM recipe_links
			WHERE category = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		args = []any{category, limit, offset}
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var results []*models.RecipeLink
	for rows.Next() {
		var link models.RecipeLink
		if err := rows.Scan(&link.ID, &link.URL, &link.Title, &link.Category, &link.CreatedAt, &link.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// Count returns the total number of bookmarks
func (db *DB) Count() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM recipe_links").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// CountByCategory returns bookmark counts per category
func (db *DB) CountByCategory() (map[string]int, error) {
	rows, err := db.conn.Query("SELECT category, COUNT(*) FROM recipe_links GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[category] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// URLExists checks if a URL is already bookmarked
func (db *DB) URLExists(url string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM recipe_links WHERE url = $1)"
	err := db.conn.QueryRow(query, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return exists, nil
}

// SaveThumbnail records a cached thumbnail, replacing any previous record
// for the same image URL
func (db *DB) SaveThumbnail(thumb *models.Thumbnail) error {
	query := `
		INSERT INTO thumbnails (url, file_path, content_type, width, height, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT(url) DO UPDATE SET
			file_path = excluded.file_path,
			content_type = excluded.content_type,
			width = excluded.width,
			height = excluded.height,
			created_at = excluded.created_at
	`

	_, err := db.conn.Exec(
		query,
		thumb.URL,
		thumb.FilePath,
		thumb.ContentType,
		thumb.Width,
		thumb.Height,
		thumb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return nil
}

// GetThumbnailByURL retrieves a cached thumbnail record by image URL
func (db *DB) GetThumbnailByURL(url string) (*models.Thumbnail, error) {
	var thumb models.Thumbnail
	query := "SELECT url, file_path, content_type, width, height, created_at FROM thumbnails WHERE url = $1"

	err := db.conn.QueryRow(query, url).Scan(
		&thumb.URL, &thumb.FilePath, &thumb.ContentType, &thumb.Width, &thumb.Height, &thumb.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query thumbnail: %w", err)
	}

	return &thumb, nil
}

// DeleteThumbnailByURL removes a cached thumbnail record
func (db *DB) DeleteThumbnailByURL(url string) error {
	_, err := db.conn.Exec("DELETE FROM thumbnails WHERE url = $1", url)
	if err != nil {
		return fmt.Errorf("failed to delete thumbnail: %w", err)
	}
	return nil
}
