package arxiv

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/papergraph/internal/reference"
)

// Paper is one arXiv entry.
type Paper struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract"`
	Published  string   `json:"published"`
	Updated    string   `json:"updated"`
	Categories []string `json:"categories"`
	PDFURL     string   `json:"pdf_url,omitempty"`
	Link       string   `json:"link,omitempty"`
	DOI        string   `json:"doi,omitempty"`
	Journal    string   `json:"journal_ref,omitempty"`
}

// Year returns the publication year, or 0 when Published is not a timestamp.
func (p Paper) Year() int {
	if len(p.Published) < 4 {
		return 0
	}
	y, err := strconv.Atoi(p.Published[:4])
	if err != nil {
		return 0
	}
	return y
}

// ToRecord converts the entry into a paper record keyed by its arXiv id.
func (p Paper) ToRecord() reference.PaperRecord {
	rec := reference.PaperRecord{
		ID:       p.ID,
		DOI:      p.DOI,
		Title:    p.Title,
		Authors:  append([]string(nil), p.Authors...),
		Year:     p.Year(),
		Abstract: p.Abstract,
		Venue:    p.Journal,
		URL:      p.Link,
		Extra: map[string]any{
			"arxiv_id": p.ID,
			"source":   "arxiv",
		},
	}
	if len(p.Categories) > 0 {
		rec.Category = CategoryName(p.Categories[0])
		rec.Extra["arxiv_categories"] = append([]string(nil), p.Categories...)
	}
	if p.PDFURL != "" {
		rec.Extra["pdf_url"] = p.PDFURL
	}
	return rec
}

// categoryPrefixes maps arXiv archive prefixes to display categories. Order
// matters: the first matching prefix wins.
var categoryPrefixes = []struct {
	prefix string
	name   string
}{
	{"cs.LG", "Machine Learning"},
	{"stat.ML", "Machine Learning"},
	{"cs.", "Computer Science"},
	{"quant-ph", "Quantum Physics"},
	{"q-bio", "Biology"},
	{"q-fin", "Economics"},
	{"econ", "Economics"},
	{"math", "Mathematics"},
	{"physics", "Physics"},
	{"astro-ph", "Physics"},
	{"cond-mat", "Physics"},
	{"hep-", "Physics"},
	{"gr-qc", "Physics"},
	{"nucl-", "Physics"},
}

// CategoryName maps an arXiv category term such as "cs.CL" to a display
// category. Unknown terms are returned unchanged.
func CategoryName(term string) string {
	for _, c := range categoryPrefixes {
		if strings.HasPrefix(term, c.prefix) {
			return c.name
		}
	}
	return term
}

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`arxiv\.org/abs/(\d{4}\.\d{4,5})`),
	regexp.MustCompile(`arxiv\.org/pdf/(\d{4}\.\d{4,5})`),
	regexp.MustCompile(`(\d{4}\.\d{4,5})`),
}

// ExtractID pulls a new-style arXiv id (e.g. 2401.12345) from a URL or bare
// id. Version suffixes are dropped.
func ExtractID(s string) (string, bool) {
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}
