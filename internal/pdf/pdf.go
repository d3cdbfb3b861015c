// Package pdf extracts text, title, and DOI from PDF files.
package pdf

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/papergraph/internal/reference"
)

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiPages is how many leading pages are searched for a DOI.
const doiPages = 3

// Document is the text content of a PDF plus the metadata guessed from it.
type Document struct {
	Path  string
	Text  string
	Title string
	DOI   string
	Pages int
}

// Read extracts text from the first maxPages pages of the PDF at path
// (all pages when maxPages <= 0). Pages that fail to decode are skipped.
// Title falls back to one derived from the file name.
func Read(path string, maxPages int) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc := &Document{Path: path, Pages: r.NumPage()}

	limit := maxPages
	if limit <= 0 || limit > doc.Pages {
		limit = doc.Pages
	}

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		text := pageText(r, i)
		if text == "" {
			continue
		}
		if i == 1 {
			doc.Title = titleFromText(text)
		}
		if doc.DOI == "" && i <= doiPages {
			doc.DOI = findDOI(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	doc.Text = strings.TrimSpace(b.String())

	if doc.Title == "" {
		doc.Title = TitleFromFilename(path)
	}
	return doc, nil
}

func pageText(r *pdf.Reader, i int) string {
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// Record builds a paper record for the document. The id is the DOI when one
// was found, otherwise the file name without extension.
func (d *Document) Record() reference.PaperRecord {
	stem := strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
	id := d.DOI
	if id == "" {
		id = stem
	}
	return reference.PaperRecord{
		ID:    id,
		DOI:   d.DOI,
		Title: d.Title,
		Extra: map[string]any{
			"source_file": filepath.Base(d.Path),
			"pages":       d.Pages,
		},
	}
}

// TitleFromFilename turns "deep_learning-survey.pdf" into "Deep Learning Survey".
func TitleFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// titleFromText returns the first substantial line that is not a header.
func titleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// findDOI returns the first valid DOI in text, or "".
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// isHeaderLine reports whether a line looks like a running header or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
