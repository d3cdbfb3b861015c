package arxiv

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// feed mirrors the parts of the arXiv Atom response we read.
type feed struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []entry  `xml:"entry"`
}

type entry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  string     `xml:"published"`
	Updated    string     `xml:"updated"`
	Authors    []author   `xml:"author"`
	Categories []category `xml:"category"`
	Links      []link     `xml:"link"`
	DOI        string     `xml:"http://arxiv.org/schemas/atom doi"`
	Journal    string     `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type author struct {
	Name string `xml:"name"`
}

type category struct {
	Term string `xml:"term,attr"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// errorIDPrefix marks the pseudo-entry arXiv returns for a malformed query.
const errorIDPrefix = "http://arxiv.org/api/errors"

// parseFeed decodes an Atom body into papers. Entries without an id or title
// are dropped. An error entry becomes an *APIError.
func parseFeed(body []byte) ([]Paper, error) {
	var f feed
	if err := xml.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	papers := make([]Paper, 0, len(f.Entries))
	for _, e := range f.Entries {
		if strings.HasPrefix(e.ID, errorIDPrefix) {
			return nil, &APIError{StatusCode: 400, Code: "bad_query", Message: collapse(e.Summary)}
		}

		p := Paper{
			ID:        path.Base(strings.TrimSpace(e.ID)),
			Title:     collapse(e.Title),
			Abstract:  collapse(e.Summary),
			Published: strings.TrimSpace(e.Published),
			Updated:   strings.TrimSpace(e.Updated),
			DOI:       strings.TrimSpace(e.DOI),
			Journal:   collapse(e.Journal),
		}
		if e.ID == "" || p.Title == "" {
			continue
		}
		for _, a := range e.Authors {
			if name := collapse(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		for _, c := range e.Categories {
			if c.Term != "" {
				p.Categories = append(p.Categories, c.Term)
			}
		}
		for _, l := range e.Links {
			switch {
			case l.Title == "pdf":
				p.PDFURL = l.Href
			case l.Type == "text/html":
				p.Link = l.Href
			}
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// collapse trims s and folds internal whitespace runs, which arXiv uses to
// wrap long titles and abstracts.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
