package scrape

import (
	"bytes"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var removeSelectors = []string{"script", "style", "noscript", "iframe", "svg", "template"}

// PageText extracts the visible text of an HTML document as one block per
// line, with blank lines and surrounding whitespace removed.
func PageText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	html, err := goquery.OuterHtml(root)
	if err == nil {
		if md, convErr := htmltomarkdown.ConvertString(html); convErr == nil {
			if text := cleanLines(md); text != "" {
				return text, nil
			}
		}
	}

	// Fall back to the raw text nodes.
	return cleanLines(nodeText(root)), nil
}

// nodeText returns the text of every element, one element per line.
func nodeText(sel *goquery.Selection) string {
	var sb strings.Builder
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			sb.WriteString(s.Text())
			return
		}
		sb.WriteString("\n")
		sb.WriteString(nodeText(s))
		sb.WriteString("\n")
	})
	return sb.String()
}

var spaceRun = regexp.MustCompile(`[ \t\x{00a0}]+`)

// cleanLines trims every line, collapses runs of spaces and drops empty lines.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
