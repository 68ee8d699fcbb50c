// Package storage persists cached thumbnail blobs. Two backends exist: the
// local filesystem (default) and S3-compatible object storage. Both address
// blobs by a relative path handed back from SaveThumb; the database keeps
// that path alongside the thumbnail record.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend is the thumbnail blob store used by the API layer
type Backend interface {
	// SaveThumb stores an encoded image and returns its storage path
	SaveThumb(data []byte, name, contentType string) (string, error)
	// ReadThumb returns the encoded image at a storage path
	ReadThumb(path string) ([]byte, error)
	// DeleteThumb removes a stored image; missing blobs are not an error
	DeleteThumb(path string) error
}

// Config contains filesystem storage configuration
type Config struct {
	BasePath string // Base directory for all stored files
}

// DefaultConfig returns default storage configuration
func DefaultConfig() Config {
	return Config{
		BasePath: "./storage",
	}
}

// Storage stores thumbnails on the local filesystem
type Storage struct {
	config Config
}

// New creates a new Storage instance
func New(config Config) (*Storage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory: %w", err)
	}

	return &Storage{
		config: config,
	}, nil
}

// SaveThumb writes a thumbnail under thumbs/YYYY/MM/ and returns its path
// relative to the base storage directory
func (s *Storage) SaveThumb(data []byte, name, contentType string) (string, error) {
	ext := extensionFromContentType(contentType)
	if ext == "" {
		ext = ".jpg"
	}

	now := time.Now()
	dirPath := filepath.Join(s.config.BasePath, "thumbs",
		fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	filename := name + ext
	filePath := filepath.Join(dirPath, filename)

	// Make the filename unique if a previous save collided
	counter := 1
	for fileExists(filePath) {
		filename = fmt.Sprintf("%s-%d%s", name, counter, ext)
		filePath = filepath.Join(dirPath, filename)
		counter++
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail file: %w", err)
	}

	relPath, err := filepath.Rel(s.config.BasePath, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}

	return relPath, nil
}

// ReadThumb reads a thumbnail from the filesystem
func (s *Storage) ReadThumb(relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.config.BasePath, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail file: %w", err)
	}
	return data, nil
}

// DeleteThumb deletes a thumbnail from the filesystem
func (s *Storage) DeleteThumb(relPath string) error {
	fullPath := filepath.Join(s.config.BasePath, relPath)

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete thumbnail file: %w", err)
	}

	return nil
}

// GetFullPath returns the full filesystem path for a relative path
func (s *Storage) GetFullPath(relPath string) string {
	return filepath.Join(s.config.BasePath, relPath)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// extensionFromContentType returns the file extension for a content type
func extensionFromContentType(contentType string) string {
	// Normalize content type (remove charset, etc.)
	contentType = strings.ToLower(strings.Split(contentType, ";")[0])
	contentType = strings.TrimSpace(contentType)

	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
