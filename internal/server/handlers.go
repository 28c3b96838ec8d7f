package server

import (
	"bytes"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"report_gen/internal/auth"
	"report_gen/internal/importer"
	"report_gen/internal/models"
	"report_gen/internal/report"
	"report_gen/internal/service"

	"github.com/labstack/echo/v4"
)

type renderRequest struct {
	Type  string        `json:"type"`
	Items []models.Item `json:"items"`
}

type createReportRequest struct {
	Title string        `json:"title"`
	Type  string        `json:"type"`
	Items []models.Item `json:"items"`
}

var reportStatuses = []models.ReportStatus{models.StatusPending, models.StatusCompleted, models.StatusFailed}

// renderReport renders the posted items, or the stored ones when the body
// has no items, and answers with the document itself.
func (s *Server) renderReport(c echo.Context) error {
	var req renderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	doc, err := s.service.Render(c.Request().Context(), service.RenderParams{
		Type:   req.Type,
		Viewer: auth.Viewer(c),
		Items:  req.Items,
	})
	if err != nil {
		return s.fail(c, err, "Failed to render report")
	}
	return writeDocument(c, doc)
}

func (s *Server) renderUpload(c echo.Context) error {
	items, err := readUpload(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if items == nil {
		items = []models.Item{}
	}

	doc, err := s.service.Render(c.Request().Context(), service.RenderParams{
		Type:   c.QueryParam("type"),
		Viewer: auth.Viewer(c),
		Items:  items,
	})
	if err != nil {
		return s.fail(c, err, "Failed to render report")
	}
	return writeDocument(c, doc)
}

func (s *Server) createReport(c echo.Context) error {
	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	rec, err := s.service.CreateReport(c.Request().Context(), service.CreateReportParams{
		Title:  req.Title,
		Type:   req.Type,
		Viewer: auth.Viewer(c),
		Items:  req.Items,
	})
	if err != nil {
		return s.fail(c, err, "Failed to create report")
	}
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) listReports(c echo.Context) error {
	var (
		params service.ListReportParams
		status string
	)
	err := echo.QueryParamsBinder(c).
		Int("page", &params.Page).
		Int("page_size", &params.PageSize).
		String("status", &status).
		String("search", &params.Search).
		BindError()
	if err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if status != "" {
		st := models.ReportStatus(status)
		if !slices.Contains(reportStatuses, st) {
			return badRequest(c, fmt.Sprintf("Unknown status %q", status))
		}
		params.Status = &st
	}

	list, err := s.service.ListReports(c.Request().Context(), params)
	if err != nil {
		return s.fail(c, err, "Failed to list reports")
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) getReport(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	rec, err := s.service.GetReport(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err, "Failed to get report")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteReport(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	if err := s.service.DeleteReport(c.Request().Context(), id); err != nil {
		return s.fail(c, err, "Failed to delete report")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Report deleted successfully",
	})
}

// downloadReport streams the stored document as an attachment.
func (s *Server) downloadReport(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	rc, rec, err := s.service.GetReportFile(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err, "Failed to get report file")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", service.FileName(rec)))
	return c.Stream(http.StatusOK, rec.ContentType, rc)
}

func (s *Server) reportURL(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var expires time.Duration
	if err := echo.QueryParamsBinder(c).Duration("expires", &expires).BindError(); err != nil {
		return badRequest(c, "Invalid expires parameter")
	}

	url, err := s.service.GetReportURL(c.Request().Context(), id, expires)
	if err != nil {
		return s.fail(c, err, "Failed to create download URL")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (s *Server) replaceItems(c echo.Context) error {
	var items []models.Item
	if err := c.Bind(&items); err != nil {
		return badRequest(c, "Invalid request format")
	}
	return s.storeItems(c, items)
}

func (s *Server) uploadItems(c echo.Context) error {
	items, err := readUpload(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return s.storeItems(c, items)
}

func (s *Server) storeItems(c echo.Context, items []models.Item) error {
	if err := s.service.ReplaceItems(c.Request().Context(), items); err != nil {
		return s.fail(c, err, "Failed to store items")
	}
	return c.JSON(http.StatusOK, map[string]int{"count": len(items)})
}

func (s *Server) listItems(c echo.Context) error {
	items, err := s.service.ListItems(c.Request().Context())
	if err != nil {
		return s.fail(c, err, "Failed to list items")
	}
	return c.JSON(http.StatusOK, items)
}

// exportItems answers with the stored items as an xlsx workbook.
func (s *Server) exportItems(c echo.Context) error {
	items, err := s.service.ListItems(c.Request().Context())
	if err != nil {
		return s.fail(c, err, "Failed to list items")
	}

	var buf bytes.Buffer
	if err := importer.WriteSpreadsheet(&buf, items); err != nil {
		return s.fail(c, err, "Failed to export items")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="items.xlsx"`)
	return c.Blob(http.StatusOK, importer.SpreadsheetContentType, buf.Bytes())
}

func writeDocument(c echo.Context, doc *report.Document) error {
	return c.Blob(http.StatusOK, doc.ContentType, []byte(doc.Content))
}

// readUpload decodes the items in the multipart field "file".
func readUpload(c echo.Context) ([]models.Item, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("multipart field %q is required", "file")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return importer.Read(f, fh.Filename)
}

func reportID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
