// Package report renders role-filtered item lists as CSV or HTML documents.
//
// A Generator picks a Renderer for the requested ReportType, drops the items
// the viewer may not see, marks high-value rows for admins and appends a
// running total. Everything happens in memory; each call owns its renderer.
package report

import (
	"context"
	"fmt"
	"strings"

	"report_gen/internal/models"
)

// priorityThreshold is the value above which admins see a row highlighted.
const priorityThreshold = 1000

// ItemStore supplies the items of stored reports.
type ItemStore interface {
	ListItems(ctx context.Context) ([]models.Item, error)
}

// Document is a rendered report with the metadata needed to store or serve it.
type Document struct {
	Type        ReportType
	Content     string
	ContentType string
	Extension   string
	ItemCount   int
	Total       float64
}

// Generator renders reports. It is safe for concurrent use.
type Generator struct {
	store ItemStore
}

// NewGenerator creates a generator. store is only consulted by
// GenerateFromStore and may be nil.
func NewGenerator(store ItemStore) *Generator {
	return &Generator{store: store}
}

// Generate renders items for user in the given report type.
func (g *Generator) Generate(reportType string, user *models.User, items []models.Item) (string, error) {
	doc, err := g.Render(reportType, user, items)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// Render is Generate with the document metadata attached.
func (g *Generator) Render(reportType string, user *models.User, items []models.Item) (*Document, error) {
	renderer, err := NewRenderer(ReportType(reportType))
	if err != nil {
		return nil, err
	}

	isAdmin := user.IsAdmin()
	visible := VisibleItems(items, user)

	if err := renderer.Begin(user); err != nil {
		return nil, err
	}

	var total float64
	for _, item := range visible {
		priority := isAdmin && item.Value > priorityThreshold
		if err := renderer.Row(item, user, priority); err != nil {
			return nil, err
		}
		total += item.Value
	}

	renderer.Footer(total)

	return &Document{
		Type:        ReportType(reportType),
		Content:     strings.TrimSpace(renderer.Output()),
		ContentType: renderer.ContentType(),
		Extension:   renderer.Extension(),
		ItemCount:   len(visible),
		Total:       total,
	}, nil
}

// GenerateFromStore renders the items held by the generator's store.
func (g *Generator) GenerateFromStore(ctx context.Context, reportType string, user *models.User) (*Document, error) {
	if _, err := ParseReportType(reportType); err != nil {
		return nil, err
	}
	if g.store == nil {
		return nil, fmt.Errorf("no item store configured")
	}

	items, err := g.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return g.Render(reportType, user, items)
}
