package service

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/storage"
)

type FileService struct {
	fileRepository repository.FileRepository
	storage        storage.Storage
}

func NewFileService(fileRepository repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepository: fileRepository,
		storage:        storage,
	}
}

// Upload stores a file under a generated uuid key and records it. The client
// filename survives only as metadata; it never becomes a storage path, so
// concurrent uploads with identical names cannot collide.
// Validation (type, size, content) is the caller's job.
func (s *FileService) Upload(userID, ownerType, ownerID, fileType string, r io.Reader, header *multipart.FileHeader) (*model.File, error) {
	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	storagePath := path.Join(fileType, filename)

	err := s.storage.Save(storagePath, r)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileModel := &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		OwnerType:    ownerType,
		OwnerID:      ownerID,
		Type:         fileType,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.fileRepository.Create(fileModel)
	if err != nil {
		// If the record fails, try to clean up the stored object
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return fileModel, nil
}

// Files lists stored files for an owner, newest first.
func (s *FileService) Files(ownerType, ownerID string) ([]*model.File, error) {
	return s.fileRepository.Files(ownerType, ownerID)
}

// URL returns the access URL for a stored file.
func (s *FileService) URL(file *model.File) string {
	if file == nil {
		return ""
	}
	return s.storage.URL(file.StoragePath)
}

// Delete removes a file from storage and the database.
func (s *FileService) Delete(fileID string) error {
	file, err := s.fileRepository.ByID(fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	delErr := s.storage.Delete(file.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete file from storage", "error", delErr, "path", file.StoragePath)
	}

	return s.fileRepository.Delete(fileID)
}
