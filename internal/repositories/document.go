package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByRunID(runID uuid.UUID) ([]models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.Document) error {
	if err := d.db.Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByRunID implements DocumentRepository. Documents come back in upload
// order.
func (d *documentRepository) FindByRunID(runID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	if err := d.db.Where("run_id = ?", runID).Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}

	return docs, nil
}
