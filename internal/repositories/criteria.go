package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type CriteriaRepository interface {
	Create(set *models.CriteriaSet) error
	FindByID(id uuid.UUID) (*models.CriteriaSet, error)
	List(limit int) ([]models.CriteriaSet, error)
}

type criteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) CriteriaRepository {
	return &criteriaRepository{db: db}
}

func (r *criteriaRepository) Create(set *models.CriteriaSet) error {
	if err := r.db.Create(set).Error; err != nil {
		return fmt.Errorf("failed to create criteria set: %w", err)
	}
	return nil
}

func (r *criteriaRepository) FindByID(id uuid.UUID) (*models.CriteriaSet, error) {
	var set models.CriteriaSet
	if err := r.db.Where("id = ?", id).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("criteria set not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find criteria set: %w", err)
	}
	return &set, nil
}

// List returns the newest criteria sets first.
func (r *criteriaRepository) List(limit int) ([]models.CriteriaSet, error) {
	var sets []models.CriteriaSet
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&sets).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list criteria sets: %w", err)
	}
	return sets, nil
}
