package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// EvidenceConstraints covers verification photo uploads (png/jpg/jpeg only).
var EvidenceConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	},
	MaxSize: 5 << 20, // 5MB
}

// ValidateFile validates a file upload against a constraint set. The MIME
// type is sniffed from the file's leading bytes, so a renamed file cannot
// pass as an image.
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) error {
	// Check file size first (before reading content)
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Reset file pointer to beginning for later use
	seeker, ok := file.(io.Seeker)
	if ok {
		_, err = seeker.Seek(0, 0)
		if err != nil {
			return fmt.Errorf("failed to reset file pointer: %w", err)
		}
	}

	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	return nil
}
