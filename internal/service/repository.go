package service

import (
	"context"
	"strings"
	"time"

	"report_gen/internal/models"
	"report_gen/internal/report"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReportRepository persists report records.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, params ListReportParams) ([]models.Report, int64, error)
	Delete(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, fileKey string) error
}

// ItemRepository persists the items reports are rendered from.
type ItemRepository interface {
	report.ItemStore
	ReplaceItems(ctx context.Context, items []models.Item) error
}

// GormReportRepository implements ReportRepository with GORM
type GormReportRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewGormReportRepository creates a GORM backed report repository
func NewGormReportRepository(db *gorm.DB, logger *logrus.Logger) *GormReportRepository {
	return &GormReportRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GormReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		r.logger.WithError(err).WithField("title", report.Title).Debug("Report insert failed")
		return err
	}
	return nil
}

func (r *GormReportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns one page of reports, newest first, and the total match count.
func (r *GormReportRepository) List(ctx context.Context, params ListReportParams) ([]models.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.PageSize
	var reports []models.Report
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(params.PageSize).
		Find(&reports).Error

	return reports, total, err
}

func (r *GormReportRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Report{}, id).Error; err != nil {
		r.logger.WithError(err).WithField("report_id", id).Debug("Report delete failed")
		return err
	}
	return nil
}

// UpdateStatus sets the status and, when given, the stored file key.
// Completing a report also stamps generated_at.
func (r *GormReportRepository) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, fileKey string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if fileKey != "" {
		updates["file_key"] = fileKey
	}
	if status == models.StatusCompleted {
		updates["generated_at"] = &now
	}

	return r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(updates).Error
}

// GormItemRepository implements ItemRepository with GORM
type GormItemRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewGormItemRepository creates a GORM backed item repository
func NewGormItemRepository(db *gorm.DB, logger *logrus.Logger) *GormItemRepository {
	return &GormItemRepository{
		db:     db,
		logger: logger,
	}
}

// ListItems returns the stored items in the order they were written.
func (r *GormItemRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := r.db.WithContext(ctx).Order("position").Order("row_id").Find(&items).Error
	return items, err
}

// ReplaceItems swaps the stored item set for items in one transaction.
func (r *GormItemRepository) ReplaceItems(ctx context.Context, items []models.Item) error {
	rows := make([]models.Item, len(items))
	for i, item := range items {
		item.RowID = 0
		item.Position = i
		rows[i] = item
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
		r.logger.WithField("count", len(rows)).Debug("Items replaced")
		return nil
	})
}
