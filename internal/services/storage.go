package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// StorageService keeps uploaded resumes on local disk under unique names.
type StorageService interface {
	SaveBytes(originalName string, data []byte, prefix string) (string, string, error)
	ReadFile(filename string) ([]byte, error)
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

// NewStorageService stores files under uploadPath. maxFileSize of zero
// disables the size check.
func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) uniqueName(originalName, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !SupportedResumeExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	return fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext), nil
}

// SaveBytes writes data under a unique name derived from prefix and the
// extension of originalName.
func (s *storageService) SaveBytes(originalName string, data []byte, prefix string) (string, string, error) {
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return "", "", fmt.Errorf("%w: %s", ErrFileTooLarge, originalName)
	}

	uniqueFilename, err := s.uniqueName(originalName, prefix)
	if err != nil {
		return "", "", err
	}
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}
	return uniqueFilename, filePath, nil
}

func (s *storageService) ReadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(s.path(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// path confines filename to the upload directory.
func (s *storageService) path(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.path(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
