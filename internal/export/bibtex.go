// Package export renders stored paper records in citation formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/papergraph/internal/reference"
)

// ToBibTeX renders one paper record as a BibTeX entry keyed by its id.
func ToBibTeX(p reference.PaperRecord) string {
	entryType := EntryType(p.Venue)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, CiteKey(p.ID))

	if len(p.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(p.Authors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(p.Title))

	if p.Venue != "" {
		field := "journal"
		if entryType == "inproceedings" {
			field = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", field, escapeLatex(p.Venue))
	}
	if p.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", p.Year)
	}
	if p.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", p.DOI)
	}
	if p.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", p.URL)
	}
	if p.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(p.Abstract))
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList renders records as BibTeX entries separated by blank lines.
func ToBibTeXList(papers []reference.PaperRecord) string {
	entries := make([]string, 0, len(papers))
	for _, p := range papers {
		entries = append(entries, ToBibTeX(p))
	}
	return strings.Join(entries, "\n")
}

// EntryType picks the BibTeX entry type from the venue name.
func EntryType(venue string) string {
	v := strings.ToLower(venue)
	for _, marker := range []string{"proceedings", "conference", "workshop", "symposium"} {
		if strings.Contains(v, marker) {
			return "inproceedings"
		}
	}
	return "article"
}

// CiteKey makes a record id usable as a citation key.
func CiteKey(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '{', '}', '(', ')', '=', '"', '#', '%', '\'', '~', '\\':
			return '_'
		case ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, id)
}

// formatAuthors converts display names to "Last, First and Last, First".
// The last whitespace-separated word is taken as the family name.
func formatAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, name := range authors {
		fields := strings.Fields(name)
		switch len(fields) {
		case 0:
			continue
		case 1:
			formatted = append(formatted, escapeLatex(fields[0]))
		default:
			last := fields[len(fields)-1]
			first := strings.Join(fields[:len(fields)-1], " ")
			formatted = append(formatted, escapeLatex(last+", "+first))
		}
	}
	return strings.Join(formatted, " and ")
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes LaTeX special characters.
func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}
