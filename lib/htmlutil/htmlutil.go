package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the visible text of a node with whitespace collapsed.
func CleanText(node *html.Node) string {
	text := GetText(node)
	text = removeNonPrintable(text)
	text = strings.Trim(text, " \t\n")
	return innerWhitespace.ReplaceAllString(text, " ")
}

type Option struct {
	Value string
	Label string
}

// SelectOptions returns every <option> below the elements matched by sel,
// options without a value attribute are skipped.
func SelectOptions(sel *goquery.Selection) []Option {
	var options []Option
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, ok := opt.Attr("value")
		if !ok {
			return
		}
		label := ""
		if len(opt.Nodes) > 0 {
			label = CleanText(opt.Nodes[0])
		}
		options = append(options, Option{Value: value, Label: label})
	})
	return options
}
