package report

import (
	"strings"

	"report_gen/internal/models"
)

const priorityStyle = ` style="font-weight:bold;"`

type htmlRenderer struct {
	lines []string
}

func (r *htmlRenderer) Begin(user *models.User) error {
	if user == nil {
		return ErrMissingUserField
	}
	r.lines = append(r.lines,
		"<html><body>",
		"<h1>Title</h1>",
		"<h2>User: "+EscapeMarkup(user.Name)+"</h2>",
		"<table>",
		"<tr><th>ID</th><th>Name</th><th>Value</th></tr>",
	)
	return nil
}

func (r *htmlRenderer) Row(item models.Item, _ *models.User, priority bool) error {
	var b strings.Builder
	b.WriteString("<tr")
	if priority {
		b.WriteString(priorityStyle)
	}
	b.WriteString(">")
	for _, cell := range []string{item.ID.String(), item.Name, models.FormatNumber(item.Value)} {
		b.WriteString("<td>")
		b.WriteString(EscapeMarkup(cell))
		b.WriteString("</td>")
	}
	b.WriteString("</tr>")
	r.lines = append(r.lines, b.String())
	return nil
}

func (r *htmlRenderer) Footer(total float64) {
	r.lines = append(r.lines,
		"</table>",
		"<h3>Total: "+EscapeMarkup(models.FormatNumber(total))+"</h3>",
		"</body></html>",
	)
}

func (r *htmlRenderer) Output() string {
	return strings.Join(r.lines, "\n")
}

func (r *htmlRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *htmlRenderer) Extension() string { return "html" }
