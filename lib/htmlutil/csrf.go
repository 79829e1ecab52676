package htmlutil

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const CSRFTokenName = "authenticity_token"

var ErrTokenNotFound = errors.New("no CSRF token found")

// Source is the page a CSRF token is extracted from, it is either RawHTML
// or a Document that was already parsed for other scraping.
type Source interface {
	document() (*goquery.Document, error)
}

type RawHTML string

func (r RawHTML) document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(string(r)))
}

type Document struct {
	Doc *goquery.Document
}

func (d Document) document() (*goquery.Document, error) {
	if d.Doc == nil {
		return nil, errors.New("nil document")
	}
	return d.Doc, nil
}

// CSRFToken looks for the meta tag first and falls back to the hidden form
// field. Pages that carry both must resolve to the meta tag.
func CSRFToken(src Source) (string, error) {
	doc, err := src.document()
	if err != nil {
		return "", err
	}

	meta := doc.Find(`meta[name="csrf-token"]`).First()
	if content, ok := meta.Attr("content"); ok {
		return content, nil
	}

	input := doc.Find(`input[type="hidden"][name="` + CSRFTokenName + `"]`).First()
	if value, ok := input.Attr("value"); ok {
		return value, nil
	}

	return "", ErrTokenNotFound
}
