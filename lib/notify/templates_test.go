package notify

import (
	"inzetbooster/lib/roster"
	"inzetbooster/lib/timezone"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goodsign/monday"
	"github.com/stretchr/testify/require"
)

const barTemplate = `{{define "subject"}}
	{{.Group}} op {{date "2 January" .Shift.Date}}
{{end}}Beste {{.Name}},

Je staat op **{{.Date}}** van {{.Start}} tot {{.End}} ingeroosterd.
{{if .Comments}}
Opmerking: {{.Comments}}
{{end}}`

func testShift() roster.Shift {
	return roster.Shift{
		ID:        2891448,
		GroupID:   12079,
		GroupName: "Bar met ervaring",
		Date:      time.Date(2024, time.January, 13, 0, 0, 0, 0, timezone.Location),
		Start:     roster.TimeOfDay{Hour: 15, Minute: 30},
		End:       roster.TimeOfDay{Hour: 18, Minute: 30},
		Comments:  "Nieuwjaarsborrel",
		UserID:    "PRS2921",
		UserName:  "Alice Alice",
		UserEmail: "alice@example.com",
	}
}

func testTemplates() Templates {
	return NewTemplates(fstest.MapFS{
		"shift-12079.md":      {Data: []byte(barTemplate)},
		"shift-1.md":          {Data: []byte("no subject here")},
		"shift-2.md":          {Data: []byte(`{{define "subject"}}x{{end}}{{.Unknown}}`)},
		"shift-cancelled.txt": {Data: []byte("ignored")},
	}, monday.LocaleNlNL)
}

func TestTemplateID(t *testing.T) {
	require.Equal(t, "shift-12079", TemplateID(12079))
}

func TestRender(t *testing.T) {
	rendered, err := testTemplates().Render("shift-12079", testShift())
	require.NoError(t, err)

	require.Equal(t, "Bar met ervaring op 13 januari", rendered.Subject)
	require.Contains(t, rendered.HTML, "<p>Beste Alice Alice,</p>")
	require.Contains(t, rendered.HTML, "<strong>zaterdag 13 januari 2024</strong>")
	require.Contains(t, rendered.HTML, "van 15:30 tot 18:30")
	require.Contains(t, rendered.HTML, "Opmerking: Nieuwjaarsborrel")
}

func TestRenderErrors(t *testing.T) {
	templates := testTemplates()

	_, err := templates.Render("shift-10736", testShift())
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = templates.Render("shift-1", testShift())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTemplateNotFound)

	_, err = templates.Render("shift-2", testShift())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTemplateNotFound)
}

func TestParseLocale(t *testing.T) {
	locale, err := ParseLocale("")
	require.NoError(t, err)
	require.Equal(t, monday.Locale(monday.LocaleNlNL), locale)

	locale, err = ParseLocale("en_US")
	require.NoError(t, err)
	require.Equal(t, monday.Locale(monday.LocaleEnUS), locale)

	_, err = ParseLocale("tlh_KL")
	require.Error(t, err)
}

func TestLoadTemplates(t *testing.T) {
	_, err := LoadTemplates(t.TempDir(), DefaultLocale)
	require.NoError(t, err)

	_, err = LoadTemplates("does-not-exist", DefaultLocale)
	require.Error(t, err)
}
