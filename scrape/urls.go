package scrape

import (
	"regexp"
	"strings"
)

// urlPattern matches full URLs, scheme-relative URLs and www-prefixed hosts.
// Bare dotted words are not URLs: initials, degrees and email local parts
// look the same.
var urlPattern = regexp.MustCompile(`(?i)(https?://[^\s,)]+)|(//[^\s,)]+)|(www\.[a-z0-9.-]+\.[a-z]{2,}(?:/[^\s,)]*)?)`)

// ExtractURLs finds candidate URLs in free text such as a roster cell.
//
// Trailing punctuation ").,];" is trimmed and scheme-relative or www matches
// get an https scheme. A match glued to a preceding word, such as the domain
// of an email address, is ignored. Duplicates are removed keeping first
// occurrence.
func ExtractURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})

	for _, m := range urlPattern.FindAllStringSubmatchIndex(text, -1) {
		var u string
		switch {
		case m[2] >= 0:
			u = text[m[2]:m[3]]
		case m[4] >= 0:
			if gluedToWord(text, m[4]) {
				continue
			}
			u = text[m[4]:m[5]]
		case m[6] >= 0:
			if gluedToWord(text, m[6]) {
				continue
			}
			u = text[m[6]:m[7]]
		default:
			continue
		}

		u = strings.TrimRight(u, ").,];")
		lower := strings.ToLower(u)
		switch {
		case strings.HasPrefix(u, "//"):
			u = "https:" + u
		case !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://"):
			u = "https://" + u
		}

		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// gluedToWord reports whether the byte before start continues a word,
// an email address or a dotted name.
func gluedToWord(text string, start int) bool {
	if start == 0 {
		return false
	}
	switch c := text[start-1]; {
	case c == '@', c == '.', c == '-', c == '_':
		return true
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	}
	return false
}

// URLsFromCells extracts URLs from several cells, de-duplicated across all of them.
func URLsFromCells(cells []string) []string {
	return ExtractURLs(strings.Join(cells, " "))
}
