package report

import (
	"strings"

	"report_gen/internal/models"
)

type csvRenderer struct {
	lines []string
}

func (r *csvRenderer) Begin(_ *models.User) error {
	r.lines = append(r.lines, "ID,NAME,VALUE,USER")
	return nil
}

// Row writes the viewer name unescaped; only the item name is quoted.
func (r *csvRenderer) Row(item models.Item, user *models.User, _ bool) error {
	if user == nil {
		return ErrMissingUserField
	}
	r.lines = append(r.lines, strings.Join([]string{
		item.ID.String(),
		EscapeDelimited(item.Name),
		models.FormatNumber(item.Value),
		user.Name,
	}, ","))
	return nil
}

func (r *csvRenderer) Footer(total float64) {
	r.lines = append(r.lines,
		"",
		"Total,,",
		models.FormatNumber(total)+",,",
	)
}

func (r *csvRenderer) Output() string {
	return strings.Join(r.lines, "\n")
}

func (r *csvRenderer) ContentType() string { return "text/csv; charset=utf-8" }

func (r *csvRenderer) Extension() string { return "csv" }
