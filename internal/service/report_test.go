package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"report_gen/internal/database"
	"report_gen/internal/models"
	"report_gen/internal/report"
	"report_gen/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) JoinPath(elem ...string) string {
	args := m.Called(elem)
	return args.String(0)
}

func (m *MockStorage) ValidateKey(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

var (
	admin = &models.User{Name: "Alice", Role: models.RoleAdmin}
	user  = &models.User{Name: "Bob", Role: models.RoleUser}

	sampleItems = []models.Item{
		{ID: "1", Name: "Alpha", Value: 200},
		{ID: "2", Name: "Bravo", Value: 1200},
		{ID: "3", Name: "Charlie", Value: 500},
		{ID: "4", Name: "Delta", Value: 800},
	}
)

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(database.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, setupTestLogger()))
	return db
}

func setupService(t *testing.T, store storage.Storage) (*ReportServiceImpl, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	logger := setupTestLogger()

	reports := NewGormReportRepository(db, logger)
	items := NewGormItemRepository(db, logger)
	svc := NewReportService(reports, items, report.NewGenerator(items), store, logger)
	return svc, db
}

func localStorage(t *testing.T) storage.Storage {
	t.Helper()
	s, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), Permissions: 0o755, CreateDirs: true})
	require.NoError(t, err)
	return s
}

func TestRenderInlineItems(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))

	doc, err := svc.Render(context.Background(), RenderParams{Type: "CSV", Viewer: user, Items: sampleItems})
	require.NoError(t, err)
	assert.Equal(t, "ID,NAME,VALUE,USER\n1,Alpha,200,Bob\n3,Charlie,500,Bob\n\nTotal,,\n700,,", doc.Content)
	assert.Equal(t, 2, doc.ItemCount)
}

func TestRenderStoredItems(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))
	ctx := context.Background()

	require.NoError(t, svc.ReplaceItems(ctx, sampleItems))

	doc, err := svc.Render(ctx, RenderParams{Type: "CSV", Viewer: admin})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(doc.Content, "Total,,\n2700,,"))
	assert.Equal(t, 4, doc.ItemCount)

	// an empty, non-nil slice does not fall back to the store
	doc, err = svc.Render(ctx, RenderParams{Type: "CSV", Viewer: admin, Items: []models.Item{}})
	require.NoError(t, err)
	assert.Equal(t, 0, doc.ItemCount)
}

func TestRenderErrors(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))
	ctx := context.Background()

	_, err := svc.Render(ctx, RenderParams{Type: "PDF", Viewer: admin, Items: sampleItems})
	assert.ErrorIs(t, err, report.ErrUnsupportedReportType)

	_, err = svc.Render(ctx, RenderParams{Type: "HTML", Items: sampleItems})
	assert.ErrorIs(t, err, report.ErrMissingUserField)
}

func TestReplaceItemsKeepsOrder(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))
	ctx := context.Background()

	require.NoError(t, svc.ReplaceItems(ctx, []models.Item{
		{ID: "b", Name: "Second", Value: 2},
		{ID: "a", Name: "First", Value: 1},
	}))
	require.NoError(t, svc.ReplaceItems(ctx, []models.Item{
		{ID: "z", Name: "Zulu", Value: 26},
		{ID: "y", Name: "Yankee", Value: 25},
	}))

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ItemID("z"), items[0].ID)
	assert.Equal(t, models.ItemID("y"), items[1].ID)

	require.NoError(t, svc.ReplaceItems(ctx, nil))
	items, err = svc.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReplaceItemsAllowsDuplicateIDs(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))
	ctx := context.Background()

	require.NoError(t, svc.ReplaceItems(ctx, []models.Item{
		{ID: "1", Name: "Alpha", Value: 200},
		{ID: "1", Name: "Alpha again", Value: 300},
	}))

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Name)
	assert.Equal(t, "Alpha again", items[1].Name)

	// a listed set can be stored back unchanged
	require.NoError(t, svc.ReplaceItems(ctx, items))

	doc, err := svc.Render(ctx, RenderParams{Type: "CSV", Viewer: user})
	require.NoError(t, err)
	assert.Equal(t, "ID,NAME,VALUE,USER\n1,Alpha,200,Bob\n1,Alpha again,300,Bob\n\nTotal,,\n500,,", doc.Content)
}

func TestCreateReport(t *testing.T) {
	store := localStorage(t)
	svc, _ := setupService(t, store)
	ctx := context.Background()

	rec, err := svc.CreateReport(ctx, CreateReportParams{Title: "Q3", Type: "HTML", Viewer: admin, Items: sampleItems})
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.True(t, rec.IsCompleted())
	assert.True(t, rec.HasFile())
	assert.NotNil(t, rec.GeneratedAt)
	assert.Equal(t, "Alice", rec.CreatedBy)
	assert.Equal(t, models.RoleAdmin, rec.ViewerRole)
	assert.Equal(t, 4, rec.ItemCount)
	assert.Equal(t, 2700.0, rec.Total)
	assert.Equal(t, "text/html; charset=utf-8", rec.ContentType)
	assert.True(t, strings.HasPrefix(rec.FileKey, "reports/"))
	assert.True(t, strings.HasSuffix(rec.FileKey, ".html"))

	rc, got, err := svc.GetReportFile(ctx, rec.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<tr style="font-weight:bold;"><td>2</td><td>Bravo</td><td>1200</td></tr>`)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "report_"+itoa(rec.ID)+".html", FileName(got))

	url, err := svc.GetReportURL(ctx, rec.ID, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
}

func TestCreateReportAnonymousCSV(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))

	rec, err := svc.CreateReport(context.Background(), CreateReportParams{Title: "Empty", Type: "CSV", Items: sampleItems})
	require.NoError(t, err)
	assert.Equal(t, anonymousCreator, rec.CreatedBy)
	assert.Equal(t, 0, rec.ItemCount)
}

func TestCreateReportRejectsBadInput(t *testing.T) {
	store := new(MockStorage)
	svc, db := setupService(t, store)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, CreateReportParams{Type: "CSV", Viewer: admin, Items: sampleItems})
	assert.ErrorIs(t, err, ErrInvalidReport)

	_, err = svc.CreateReport(ctx, CreateReportParams{Title: "x", Type: "XML", Viewer: admin, Items: sampleItems})
	assert.ErrorIs(t, err, report.ErrUnsupportedReportType)

	var count int64
	require.NoError(t, db.Model(&models.Report{}).Count(&count).Error)
	assert.Zero(t, count)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReportStorageFailure(t *testing.T) {
	store := new(MockStorage)
	store.On("JoinPath", mock.Anything).Return("reports/fixed.csv")
	store.On("Save", mock.Anything, "reports/fixed.csv", mock.Anything).Return(errors.New("disk full"))
	svc, db := setupService(t, store)

	_, err := svc.CreateReport(context.Background(), CreateReportParams{Title: "Q3", Type: "CSV", Viewer: admin, Items: sampleItems})
	assert.ErrorContains(t, err, "disk full")

	var rec models.Report
	require.NoError(t, db.First(&rec).Error)
	assert.True(t, rec.IsFailed())
	assert.False(t, rec.HasFile())

	_, _, err = svc.GetReportFile(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrReportNotReady)
	store.AssertExpectations(t)
}

func TestGetReportFileMissingFromStorage(t *testing.T) {
	store := new(MockStorage)
	svc, db := setupService(t, store)

	rec := &models.Report{
		Title:     "Lost",
		Type:      "CSV",
		Status:    models.StatusCompleted,
		FileKey:   "reports/lost.csv",
		CreatedBy: "Bob",
	}
	require.NoError(t, db.Create(rec).Error)
	store.On("Exists", mock.Anything, rec.FileKey).Return(false, nil)

	_, _, err := svc.GetReportFile(context.Background(), rec.ID)
	assert.ErrorIs(t, err, ErrReportNotReady)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetReportNotFound(t *testing.T) {
	svc, _ := setupService(t, localStorage(t))
	ctx := context.Background()

	_, err := svc.GetReport(ctx, 42)
	assert.ErrorIs(t, err, ErrReportNotFound)

	assert.ErrorIs(t, svc.DeleteReport(ctx, 42), ErrReportNotFound)

	_, _, err = svc.GetReportFile(ctx, 42)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestListReports(t *testing.T) {
	svc, db := setupService(t, localStorage(t))
	ctx := context.Background()

	for _, title := range []string{"Weekly", "Monthly", "Weekly summary"} {
		_, err := svc.CreateReport(ctx, CreateReportParams{Title: title, Type: "CSV", Viewer: user, Items: sampleItems})
		require.NoError(t, err)
	}
	require.NoError(t, db.Create(&models.Report{Title: "Stuck", Type: "CSV", Status: models.StatusPending, CreatedBy: "Bob"}).Error)

	result, err := svc.ListReports(ctx, ListReportParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, defaultPageSize, result.PageSize)
	assert.Equal(t, "Stuck", result.Reports[0].Title)

	completed := models.StatusCompleted
	result, err = svc.ListReports(ctx, ListReportParams{Status: &completed, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Reports, 2)
	assert.Equal(t, 2, result.TotalPages)

	result, err = svc.ListReports(ctx, ListReportParams{Search: "weekly", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, maxPageSize, result.PageSize)
}

func TestDeleteReport(t *testing.T) {
	store := new(MockStorage)
	svc, db := setupService(t, store)

	rec := &models.Report{
		Title:     "Test Report",
		Type:      "CSV",
		Status:    models.StatusCompleted,
		FileKey:   "reports/test-file.csv",
		CreatedBy: "test-user",
	}
	require.NoError(t, db.Create(rec).Error)

	store.On("Delete", mock.Anything, rec.FileKey).Return(errors.New("gone already"))

	require.NoError(t, svc.DeleteReport(context.Background(), rec.ID))

	var count int64
	db.Model(&models.Report{}).Where("id = ?", rec.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	store.AssertExpectations(t)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "report_7.csv", FileName(&models.Report{ID: 7, FileKey: "reports/abc.csv"}))
	assert.Equal(t, "report_7", FileName(&models.Report{ID: 7}))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
