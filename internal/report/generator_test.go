package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"report_gen/internal/models"
	"report_gen/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = &models.User{Name: "Admin", Role: models.RoleAdmin}
	user  = &models.User{Name: "User", Role: models.RoleUser}
	guest = &models.User{Name: "Guest", Role: "AUDITOR"}
)

func sampleItems() []models.Item {
	return []models.Item{
		{ID: "1", Name: "Alpha", Value: 200},
		{ID: "2", Name: "Bravo", Value: 1200},
		{ID: "3", Name: "Charlie", Value: 500},
		{ID: "4", Name: "Delta", Value: 800},
	}
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return lines[len(lines)-1]
}

func TestGenerateCSVAdmin(t *testing.T) {
	out, err := report.NewGenerator(nil).Generate("CSV", admin, sampleItems())
	require.NoError(t, err)

	want := strings.Join([]string{
		"ID,NAME,VALUE,USER",
		"1,Alpha,200,Admin",
		"2,Bravo,1200,Admin",
		"3,Charlie,500,Admin",
		"4,Delta,800,Admin",
		"",
		"Total,,",
		"2700,,",
	}, "\n")
	assert.Equal(t, want, out)
	assert.Equal(t, "2700,,", lastLine(out))
}

func TestGenerateCSVUser(t *testing.T) {
	out, err := report.NewGenerator(nil).Generate("CSV", user, sampleItems())
	require.NoError(t, err)

	assert.Contains(t, out, "1,Alpha,200,User")
	assert.Contains(t, out, "3,Charlie,500,User")
	assert.NotContains(t, out, "2,Bravo,1200,User")
	assert.NotContains(t, out, "4,Delta,800,User")
	assert.Equal(t, "700,,", lastLine(out))
}

func TestGenerateHTMLAdmin(t *testing.T) {
	out, err := report.NewGenerator(nil).Generate("HTML", admin, sampleItems())
	require.NoError(t, err)

	want := strings.Join([]string{
		"<html><body>",
		"<h1>Title</h1>",
		"<h2>User: Admin</h2>",
		"<table>",
		"<tr><th>ID</th><th>Name</th><th>Value</th></tr>",
		"<tr><td>1</td><td>Alpha</td><td>200</td></tr>",
		`<tr style="font-weight:bold;"><td>2</td><td>Bravo</td><td>1200</td></tr>`,
		"<tr><td>3</td><td>Charlie</td><td>500</td></tr>",
		"<tr><td>4</td><td>Delta</td><td>800</td></tr>",
		"</table>",
		"<h3>Total: 2700</h3>",
		"</body></html>",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestGenerateHTMLUser(t *testing.T) {
	out, err := report.NewGenerator(nil).Generate("HTML", user, sampleItems())
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>User: User</h2>")
	assert.Contains(t, out, "<tr><td>1</td><td>Alpha</td><td>200</td></tr>")
	assert.Contains(t, out, "<tr><td>3</td><td>Charlie</td><td>500</td></tr>")
	assert.NotContains(t, out, "Bravo")
	assert.NotContains(t, out, "Delta")
	assert.NotContains(t, out, "font-weight")
	assert.Contains(t, out, "<h3>Total: 700</h3>")
}

func TestGenerateUnknownRoleSeesNothing(t *testing.T) {
	g := report.NewGenerator(nil)

	out, err := g.Generate("CSV", guest, sampleItems())
	require.NoError(t, err)
	assert.Equal(t, "ID,NAME,VALUE,USER\n\nTotal,,\n0,,", out)

	out, err = g.Generate("HTML", guest, sampleItems())
	require.NoError(t, err)
	assert.NotContains(t, out, "<td>")
	assert.Contains(t, out, "<h3>Total: 0</h3>")
}

func TestGenerateAbsentUser(t *testing.T) {
	g := report.NewGenerator(nil)

	out, err := g.Generate("CSV", nil, sampleItems())
	require.NoError(t, err)
	assert.Equal(t, "ID,NAME,VALUE,USER\n\nTotal,,\n0,,", out)

	_, err = g.Generate("HTML", nil, sampleItems())
	assert.ErrorIs(t, err, report.ErrMissingUserField)
}

func TestGenerateUnsupportedType(t *testing.T) {
	g := report.NewGenerator(nil)

	for _, typ := range []string{"PDF", "csv", "html", ""} {
		out, err := g.Generate(typ, admin, sampleItems())
		assert.ErrorIs(t, err, report.ErrUnsupportedReportType, typ)
		assert.Empty(t, out)
	}

	// The type is checked before the viewer or the items are looked at.
	_, err := g.Generate("XML", nil, nil)
	assert.ErrorIs(t, err, report.ErrUnsupportedReportType)
}

func TestGenerateEscapesFields(t *testing.T) {
	items := []models.Item{{ID: "<1>", Name: `Fish & "Chips", 'Co'`, Value: 1500}}
	viewer := &models.User{Name: "<b>Root</b>", Role: models.RoleAdmin}

	out, err := report.NewGenerator(nil).Generate("HTML", viewer, items)
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>User: &lt;b&gt;Root&lt;/b&gt;</h2>")
	assert.Contains(t, out,
		`<tr style="font-weight:bold;"><td>&lt;1&gt;</td><td>Fish &amp; &quot;Chips&quot;, &#39;Co&#39;</td><td>1500</td></tr>`)

	out, err = report.NewGenerator(nil).Generate("CSV", viewer, items)
	require.NoError(t, err)
	assert.Contains(t, out, `<1>,"Fish & ""Chips"", 'Co'",1500,<b>Root</b>`)
}

func TestGenerateFractionalTotal(t *testing.T) {
	items := []models.Item{
		{ID: "a", Name: "A", Value: 10.25},
		{ID: "b", Name: "B", Value: 0.5},
	}
	out, err := report.NewGenerator(nil).Generate("CSV", user, items)
	require.NoError(t, err)
	assert.Contains(t, out, "a,A,10.25,User")
	assert.Equal(t, "10.75,,", lastLine(out))
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	_, err := report.NewGenerator(nil).Generate("HTML", admin, items)
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), items)
}

func TestRenderMetadata(t *testing.T) {
	doc, err := report.NewGenerator(nil).Render("HTML", user, sampleItems())
	require.NoError(t, err)

	assert.Equal(t, report.HTML, doc.Type)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	assert.Equal(t, "html", doc.Extension)
	assert.Equal(t, 2, doc.ItemCount)
	assert.Equal(t, 700.0, doc.Total)
}

type stubStore struct {
	items []models.Item
	err   error
	calls int
}

func (s *stubStore) ListItems(context.Context) ([]models.Item, error) {
	s.calls++
	return s.items, s.err
}

func TestGenerateNeverTouchesStore(t *testing.T) {
	store := &stubStore{items: sampleItems()}
	_, err := report.NewGenerator(store).Generate("CSV", admin, sampleItems())
	require.NoError(t, err)
	assert.Zero(t, store.calls)
}

func TestGenerateFromStore(t *testing.T) {
	store := &stubStore{items: sampleItems()}
	doc, err := report.NewGenerator(store).GenerateFromStore(context.Background(), "CSV", admin)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 4, doc.ItemCount)
	assert.Equal(t, "2700,,", lastLine(doc.Content))
}

func TestGenerateFromStoreErrors(t *testing.T) {
	ctx := context.Background()

	store := &stubStore{}
	_, err := report.NewGenerator(store).GenerateFromStore(ctx, "PDF", admin)
	assert.ErrorIs(t, err, report.ErrUnsupportedReportType)
	assert.Zero(t, store.calls)

	_, err = report.NewGenerator(nil).GenerateFromStore(ctx, "CSV", admin)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = report.NewGenerator(&stubStore{err: boom}).GenerateFromStore(ctx, "CSV", admin)
	assert.ErrorIs(t, err, boom)
}
