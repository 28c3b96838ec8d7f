package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ReportStatus is the lifecycle state of a stored report.
type ReportStatus string

const (
	StatusPending   ReportStatus = "pending"
	StatusCompleted ReportStatus = "completed"
	StatusFailed    ReportStatus = "failed"
)

// Report represents a generated report
type Report struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Type        string         `json:"type" gorm:"size:16;not null"`
	Status      ReportStatus   `json:"status" gorm:"size:50;not null;default:'pending'"`
	FileKey     string         `json:"file_key,omitempty" gorm:"size:255"`
	ContentType string         `json:"content_type,omitempty" gorm:"size:100"`
	Viewer      string         `json:"viewer" gorm:"size:255"`
	ViewerRole  Role           `json:"viewer_role" gorm:"size:50"`
	ItemCount   int            `json:"item_count"`
	Total       float64        `json:"total"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
	CreatedBy   string         `json:"created_by" gorm:"size:255;not null"`
}

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// Validate checks the fields required before a report is persisted.
func (r *Report) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.Type == "" {
		return errors.New("type is required")
	}
	if r.CreatedBy == "" {
		return errors.New("created_by is required")
	}
	return nil
}

// IsCompleted returns true if the report generation is completed
func (r *Report) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// IsPending returns true if the report is pending generation
func (r *Report) IsPending() bool {
	return r.Status == StatusPending
}

// IsFailed returns true if the report generation failed
func (r *Report) IsFailed() bool {
	return r.Status == StatusFailed
}

// HasFile returns true if a rendered document was stored for the report
func (r *Report) HasFile() bool {
	return r.FileKey != ""
}

// SetStatus updates the report status
func (r *Report) SetStatus(status ReportStatus) {
	r.Status = status
	r.UpdatedAt = time.Now()
}
