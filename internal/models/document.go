package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is an uploaded resume stored on disk for a screening run.
type Document struct {
	ID               uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	RunID            uuid.UUID `gorm:"type:varchar(36);index" json:"run_id"`
	Filename         string    `gorm:"type:varchar(255)" json:"filename"`
	OriginalFileName string    `gorm:"type:varchar(255)" json:"original_filename"`
	FileType         string    `gorm:"type:varchar(16)" json:"file_type"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
