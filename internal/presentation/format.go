// Package presentation turns assistant answers into terminal-friendly text.
// Everything except Renderer is a pure string transform.
package presentation

import (
	"regexp"
	"strconv"
	"strings"
)

const labelIndent = "   "

var (
	// An item number preceded by start of text or whitespace and followed by whitespace
	itemPattern = regexp.MustCompile(`(?:^|\s+)(\d{1,2})\.\s+`)

	labelPattern = regexp.MustCompile(
		`[ \t]*\n?[ \t]*[,;-]?[ \t]*(?:\*\*)?\b(Address|Adresa|Phone|Telefón|Tel\.|Email|E-mail|Web|URL|Distance|Vzdialenosť)(?:\*\*)?:(?:\*\*)?[ \t]*`,
	)

	blankRuns = regexp.MustCompile(`\n{3,}`)

	markdownPattern = regexp.MustCompile(
		"(?m)\\*\\*|__|`|^#{1,6}\\s|^\\s*[-*+]\\s|\\[[^\\]]+\\]\\([^)]+\\)",
	)
)

// FormatAnswer reflows a numbered multi-record answer such as
// "1. **Name** Address: ... Phone: ... 2. **Name** ..." into blank-line
// separated entries, each known label starting its own indented line.
// Text without both a "1." and a "2." item is returned unchanged, so a
// lone ordinal such as "1. mája" stays inline.
func FormatAnswer(text string) string {
	items := numberedItems(text)
	if len(items) < 2 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range items {
		b.WriteString(text[last:loc[0]])
		b.WriteString("\n\n")
		b.WriteString(text[loc[2]:loc[3]])
		b.WriteString(". ")
		last = loc[1]
	}
	b.WriteString(text[last:])

	out := labelPattern.ReplaceAllString(b.String(), "\n"+labelIndent+"$1: ")
	return tidy(out)
}

// numberedItems returns the match locations of items 1, 2, 3, ... in
// sequence. Numbers out of sequence (dates, house numbers) are skipped.
func numberedItems(text string) [][]int {
	var items [][]int
	next := 1
	for _, loc := range itemPattern.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || n != next {
			continue
		}
		items = append(items, loc)
		next++
	}
	return items
}

func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := strings.Join(lines, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.Trim(out, "\n")
}

// HasMarkdown reports whether text contains markdown markers:
// bold/italic, code, headings, list bullets or links
func HasMarkdown(text string) bool {
	return markdownPattern.MatchString(text)
}
