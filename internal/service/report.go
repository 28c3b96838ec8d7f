// Package service stores rendered reports and the items they are built from.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"report_gen/internal/models"
	"report_gen/internal/report"
	"report_gen/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	anonymousCreator = "anonymous"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportNotReady = errors.New("report file is not available")
	ErrInvalidReport  = errors.New("invalid report")
)

// ReportService renders reports and manages the stored ones.
type ReportService interface {
	Render(ctx context.Context, params RenderParams) (*report.Document, error)
	CreateReport(ctx context.Context, params CreateReportParams) (*models.Report, error)
	GetReport(ctx context.Context, id uint) (*models.Report, error)
	ListReports(ctx context.Context, params ListReportParams) (*ReportList, error)
	DeleteReport(ctx context.Context, id uint) error
	GetReportFile(ctx context.Context, id uint) (io.ReadCloser, *models.Report, error)
	GetReportURL(ctx context.Context, id uint, expiration time.Duration) (string, error)

	ReplaceItems(ctx context.Context, items []models.Item) error
	ListItems(ctx context.Context) ([]models.Item, error)
}

// RenderParams selects the format, viewer and items of a render. A nil
// Items renders the stored items.
type RenderParams struct {
	Type   string
	Viewer *models.User
	Items  []models.Item
}

// CreateReportParams describes a report to render and keep.
type CreateReportParams struct {
	Title  string
	Type   string
	Viewer *models.User
	Items  []models.Item
}

// ListReportParams holds paging and filters for ListReports
type ListReportParams struct {
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Status   *models.ReportStatus `json:"status,omitempty"`
	Search   string               `json:"search,omitempty"`
}

// ReportList is one page of reports
type ReportList struct {
	Reports    []models.Report `json:"reports"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// ReportServiceImpl implements ReportService
type ReportServiceImpl struct {
	reports   ReportRepository
	items     ItemRepository
	generator *report.Generator
	storage   storage.Storage
	logger    *logrus.Logger
}

// NewReportService creates a report service
func NewReportService(
	reports ReportRepository,
	items ItemRepository,
	generator *report.Generator,
	storage storage.Storage,
	logger *logrus.Logger,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		reports:   reports,
		items:     items,
		generator: generator,
		storage:   storage,
		logger:    logger,
	}
}

// Render renders a document without storing it.
func (s *ReportServiceImpl) Render(ctx context.Context, params RenderParams) (*report.Document, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"type":   params.Type,
		"viewer": viewerName(params.Viewer),
	})

	var (
		doc *report.Document
		err error
	)
	if params.Items == nil {
		doc, err = s.generator.GenerateFromStore(ctx, params.Type, params.Viewer)
	} else {
		doc, err = s.generator.Render(params.Type, params.Viewer, params.Items)
	}
	if err != nil {
		logger.WithError(err).Warn("Report rendering failed")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"rows":  doc.ItemCount,
		"total": doc.Total,
	}).Debug("Report rendered")
	return doc, nil
}

// CreateReport renders a report, stores the document and records it.
func (s *ReportServiceImpl) CreateReport(ctx context.Context, params CreateReportParams) (*models.Report, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"title":  params.Title,
		"type":   params.Type,
		"viewer": viewerName(params.Viewer),
	})

	rec := &models.Report{
		Title:     params.Title,
		Type:      params.Type,
		Status:    models.StatusPending,
		CreatedBy: anonymousCreator,
	}
	if params.Viewer != nil {
		rec.Viewer = params.Viewer.Name
		rec.ViewerRole = params.Viewer.Role
		if params.Viewer.Name != "" {
			rec.CreatedBy = params.Viewer.Name
		}
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	doc, err := s.Render(ctx, RenderParams{Type: params.Type, Viewer: params.Viewer, Items: params.Items})
	if err != nil {
		return nil, err
	}

	rec.ContentType = doc.ContentType
	rec.ItemCount = doc.ItemCount
	rec.Total = doc.Total

	if err := s.reports.Create(ctx, rec); err != nil {
		logger.WithError(err).Error("Failed to save report record")
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	logger = logger.WithField("report_id", rec.ID)

	key := s.storage.JoinPath("reports", uuid.NewString()+"."+doc.Extension)
	if err := s.storage.Save(ctx, key, strings.NewReader(doc.Content)); err != nil {
		logger.WithError(err).Error("Failed to store report file")
		if uerr := s.reports.UpdateStatus(ctx, rec.ID, models.StatusFailed, ""); uerr != nil {
			logger.WithError(uerr).Error("Failed to mark report as failed")
		}
		return nil, fmt.Errorf("failed to store report file: %w", err)
	}

	if err := s.reports.UpdateStatus(ctx, rec.ID, models.StatusCompleted, key); err != nil {
		logger.WithError(err).Error("Failed to complete report")
		return nil, fmt.Errorf("failed to complete report: %w", err)
	}

	logger.WithField("file_key", key).Info("Report created")
	return s.GetReport(ctx, rec.ID)
}

// GetReport returns the report record with the given id.
func (s *ReportServiceImpl) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	rec, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrReportNotFound, id)
		}
		s.logger.WithError(err).WithField("report_id", id).Error("Failed to get report")
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rec, nil
}

// ListReports returns a page of reports
func (s *ReportServiceImpl) ListReports(ctx context.Context, params ListReportParams) (*ReportList, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	reports, total, err := s.reports.List(ctx, params)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reports")
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return &ReportList{
		Reports:    reports,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
	}, nil
}

// DeleteReport removes the stored file and the record. A file that cannot
// be removed does not keep the record alive.
func (s *ReportServiceImpl) DeleteReport(ctx context.Context, id uint) error {
	rec, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}
	logger := s.logger.WithField("report_id", id)

	if rec.HasFile() {
		if err := s.storage.Delete(ctx, rec.FileKey); err != nil {
			logger.WithError(err).WithField("file_key", rec.FileKey).Error("Failed to delete report file")
		}
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		logger.WithError(err).Error("Failed to delete report record")
		return fmt.Errorf("failed to delete report: %w", err)
	}

	logger.WithField("title", rec.Title).Info("Report deleted")
	return nil
}

// GetReportFile opens the stored document. The caller closes the reader.
func (s *ReportServiceImpl) GetReportFile(ctx context.Context, id uint) (io.ReadCloser, *models.Report, error) {
	rec, err := s.readyReport(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	exists, err := s.storage.Exists(ctx, rec.FileKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check report file: %w", err)
	}
	if !exists {
		s.logger.WithFields(logrus.Fields{
			"report_id": id,
			"file_key":  rec.FileKey,
		}).Warn("Report file is missing from storage")
		return nil, nil, fmt.Errorf("%w: %d", ErrReportNotReady, id)
	}

	reader, err := s.storage.Get(ctx, rec.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %d", ErrReportNotReady, id)
		}
		s.logger.WithError(err).WithField("file_key", rec.FileKey).Error("Failed to read report file")
		return nil, nil, fmt.Errorf("failed to read report file: %w", err)
	}
	return reader, rec, nil
}

// GetReportURL returns a temporary download link for the stored document.
func (s *ReportServiceImpl) GetReportURL(ctx context.Context, id uint, expiration time.Duration) (string, error) {
	rec, err := s.readyReport(ctx, id)
	if err != nil {
		return "", err
	}
	if expiration <= 0 {
		expiration = storage.DefaultPresignExpiration
	}

	url, err := s.storage.GetPresignedURL(ctx, rec.FileKey, expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign report file: %w", err)
	}
	return url, nil
}

func (s *ReportServiceImpl) readyReport(ctx context.Context, id uint) (*models.Report, error) {
	rec, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsCompleted() || !rec.HasFile() {
		return nil, fmt.Errorf("%w: %d", ErrReportNotReady, id)
	}
	return rec, nil
}

// ReplaceItems stores items as the new item set.
func (s *ReportServiceImpl) ReplaceItems(ctx context.Context, items []models.Item) error {
	if err := s.items.ReplaceItems(ctx, items); err != nil {
		s.logger.WithError(err).Error("Failed to replace items")
		return fmt.Errorf("failed to replace items: %w", err)
	}
	s.logger.WithField("count", len(items)).Info("Items replaced")
	return nil
}

// ListItems returns the stored items.
func (s *ReportServiceImpl) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// FileName is the download name of a stored report.
func FileName(rec *models.Report) string {
	ext := strings.TrimPrefix(path.Ext(rec.FileKey), ".")
	if ext == "" {
		return fmt.Sprintf("report_%d", rec.ID)
	}
	return fmt.Sprintf("report_%d.%s", rec.ID, ext)
}

func viewerName(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.Name
}
