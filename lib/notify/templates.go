package notify

import (
	"bytes"
	"errors"
	"fmt"
	"inzetbooster/lib/roster"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/goodsign/monday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var ErrTemplateNotFound = errors.New("template not found")

const DefaultLocale = monday.LocaleNlNL

const longDateLayout = "Monday 2 January 2006"

// TemplateID is the content id a shift is notified with, one template per
// group.
func TemplateID(groupID int) string {
	return "shift-" + strconv.Itoa(groupID)
}

// ParseLocale accepts locale names like "nl_NL", an empty name gives
// DefaultLocale.
func ParseLocale(name string) (monday.Locale, error) {
	if name == "" {
		return DefaultLocale, nil
	}
	for _, locale := range monday.ListLocales() {
		if string(locale) == name {
			return locale, nil
		}
	}
	return "", fmt.Errorf("unknown locale %q", name)
}

type Rendered struct {
	Subject string
	HTML    string
}

// TemplateData is what a shift template gets as dot.
type TemplateData struct {
	Shift    roster.Shift
	Group    string
	Date     string
	Start    string
	End      string
	Name     string
	Comments string
}

// Templates renders `<id>.md` files from a directory. A file is a
// text/template producing markdown for the body and must define a
// "subject" template:
//
//	{{define "subject"}}Bardienst op {{.Date}}{{end}}
//	Beste {{.Name}},
//
//	je staat op {{.Date}} van {{.Start}} tot {{.End}} ingeroosterd.
type Templates struct {
	fsys     fs.FS
	locale   monday.Locale
	markdown goldmark.Markdown
}

func NewTemplates(fsys fs.FS, locale monday.Locale) Templates {
	return Templates{
		fsys:   fsys,
		locale: locale,
		markdown: goldmark.New(
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func LoadTemplates(dir string, locale monday.Locale) (Templates, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Templates{}, err
	}
	if !info.IsDir() {
		return Templates{}, fmt.Errorf("%s is not a directory", dir)
	}
	return NewTemplates(os.DirFS(dir), locale), nil
}

func (t Templates) formatDate(layout string, date time.Time) string {
	return monday.Format(date, layout, t.locale)
}

func (t Templates) data(shift roster.Shift) TemplateData {
	return TemplateData{
		Shift:    shift,
		Group:    shift.GroupName,
		Date:     t.formatDate(longDateLayout, shift.Date),
		Start:    shift.Start.String(),
		End:      shift.End.String(),
		Name:     shift.UserName,
		Comments: shift.Comments,
	}
}

func (t Templates) Render(id string, shift roster.Shift) (Rendered, error) {
	content, err := fs.ReadFile(t.fsys, id+".md")
	if errors.Is(err, fs.ErrNotExist) {
		return Rendered{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err != nil {
		return Rendered{}, err
	}

	tmpl, err := template.New(id).
		Option("missingkey=error").
		Funcs(template.FuncMap{"date": t.formatDate}).
		Parse(string(content))
	if err != nil {
		return Rendered{}, fmt.Errorf("parse template %s: %w", id, err)
	}
	if tmpl.Lookup("subject") == nil {
		return Rendered{}, fmt.Errorf("template %s does not define a subject", id)
	}

	data := t.data(shift)
	var subject bytes.Buffer
	err = tmpl.ExecuteTemplate(&subject, "subject", data)
	if err != nil {
		return Rendered{}, fmt.Errorf("render subject of %s: %w", id, err)
	}
	var body bytes.Buffer
	err = tmpl.Execute(&body, data)
	if err != nil {
		return Rendered{}, fmt.Errorf("render body of %s: %w", id, err)
	}
	var out bytes.Buffer
	err = t.markdown.Convert(body.Bytes(), &out)
	if err != nil {
		return Rendered{}, fmt.Errorf("convert %s to html: %w", id, err)
	}

	return Rendered{
		Subject: strings.Join(strings.Fields(subject.String()), " "),
		HTML:    out.String(),
	}, nil
}
