package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type ScreeningRepository interface {
	Create(run *models.ScreeningRun) error
	FindByID(id uuid.UUID) (*models.ScreeningRun, error)
	UpdateStatus(id uuid.UUID, status models.RunStatus) error
	SaveResults(id uuid.UUID, results []models.CandidateResult, artifact string) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.ScreeningRun, error)
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(run *models.ScreeningRun) error {
	if err := r.db.Omit("CriteriaSet").Create(run).Error; err != nil {
		return fmt.Errorf("failed to create screening run: %w", err)
	}
	return nil
}

// FindByID loads the run with its results in report order.
func (r *screeningRepository) FindByID(id uuid.UUID) (*models.ScreeningRun, error) {
	var run models.ScreeningRun
	err := r.db.
		Preload("Results", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("screening run not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find screening run: %w", err)
	}
	return &run, nil
}

func (r *screeningRepository) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	result := r.db.Model(&models.ScreeningRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening run not found: %w", ErrNotFound)
	}

	return nil
}

// SaveResults replaces the run's results and marks it completed in one
// transaction.
func (r *screeningRepository) SaveResults(id uuid.UUID, results []models.CandidateResult, artifact string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.ScreeningRun{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":        models.StatusCompleted,
				"artifact_name": artifact,
				"completed_at":  now,
				"updated_at":    now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update result: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("screening run not found: %w", ErrNotFound)
		}

		if err := tx.Where("run_id = ?", id).Delete(&models.CandidateResult{}).Error; err != nil {
			return fmt.Errorf("failed to clear results: %w", err)
		}
		if len(results) == 0 {
			return nil
		}

		rows := make([]models.CandidateResult, len(results))
		for i, res := range results {
			res.ID = uuid.Nil
			res.RunID = id
			res.Position = i
			rows[i] = res
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		return nil
	})
}

func (r *screeningRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.ScreeningRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening run not found: %w", ErrNotFound)
	}

	return nil
}

func (r *screeningRepository) FindPendingJobs(limit int) ([]models.ScreeningRun, error) {
	var runs []models.ScreeningRun
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return runs, nil
}
