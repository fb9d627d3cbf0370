package renderer

import (
	"strings"
	"unicode"
)

// Heading is one entry of a document's table of contents.
type Heading struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// TableOfContents lists the level 1-3 ATX headings of a Markdown document.
func TableOfContents(markdown string) (toc []Heading) {
	toc = []Heading{}

	for _, line := range strings.Split(markdown, "\n") {
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level == 0 || level > 3 || level >= len(line) {
			continue
		}
		if line[level] != ' ' && line[level] != '\t' {
			continue
		}

		title := strings.TrimSpace(line[level:])
		if title == "" {
			continue
		}

		toc = append(toc, Heading{Level: level, Title: title, Anchor: anchor(title)})
	}

	return toc
}

// anchor lowercases a title, keeps letters, digits, spaces and hyphens, and
// turns whitespace runs into hyphens.
func anchor(title string) (a string) {
	var kept strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || unicode.IsSpace(r) {
			kept.WriteRune(r)
		}
	}
	a = strings.Join(strings.Fields(kept.String()), "-")
	return a
}
