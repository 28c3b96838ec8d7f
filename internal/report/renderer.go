package report

import (
	"errors"
	"fmt"

	"report_gen/internal/models"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedReportType = errors.New("unsupported report type")
	ErrMissingUserField      = errors.New("report requires a viewer")
)

// ReportType names an output format.
type ReportType string

const (
	CSV  ReportType = "CSV"
	HTML ReportType = "HTML"
)

var reportTypes = []ReportType{CSV, HTML}

// String returns the report type name.
func (t ReportType) String() string { return string(t) }

// ReportTypes returns all supported report types.
func ReportTypes() []ReportType {
	out := make([]ReportType, len(reportTypes))
	copy(out, reportTypes)
	return out
}

// ParseReportType matches s exactly against the supported report types.
func ParseReportType(s string) (ReportType, error) {
	for _, t := range reportTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedReportType, s)
}

// Renderer accumulates one report document. Begin is called once before
// any Row, Footer once after the last Row, and Output once at the end.
type Renderer interface {
	Begin(user *models.User) error
	Row(item models.Item, user *models.User, priority bool) error
	Footer(total float64)
	Output() string

	// ContentType is the MIME type of the rendered document.
	ContentType() string
	// Extension is the file extension for stored documents, without a dot.
	Extension() string
}

// NewRenderer returns a fresh renderer for t.
func NewRenderer(t ReportType) (Renderer, error) {
	switch t {
	case CSV:
		return &csvRenderer{}, nil
	case HTML:
		return &htmlRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, string(t))
	}
}
