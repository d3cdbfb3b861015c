// Package importer converts external bibliography exports into paper records.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matsen/papergraph/internal/reference"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string `json:"_id"`
	Citekey   string `json:"citekey"`
	DOI       string `json:"doi"`
	Title     string `json:"title"`
	Abstract  string `json:"abstract"`
	Journal   string `json:"journal"`
	URL       string `json:"url"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
		Day   FlexibleString `json:"day"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
		ORCID string `json:"orcid"`
	} `json:"author"`
	Labels      []string `json:"labelsNamed"`
	Attachments []struct {
		ID         string `json:"_id"`
		ArticlePDF int    `json:"article_pdf"` // 1 = main PDF, 0 = supplement
		Filename   string `json:"filename"`
	} `json:"attachments"`
}

// ParsePaperpile parses a Paperpile JSON export. Invalid entries are reported
// individually and skipped; the valid ones are still returned.
func ParsePaperpile(data []byte) ([]reference.PaperRecord, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var papers []reference.PaperRecord
	var errs []error

	for i, entry := range entries {
		paper, err := paperpileEntryToRecord(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		papers = append(papers, paper)
	}

	return papers, errs
}

// paperpileEntryToRecord converts a Paperpile entry to a paper record.
// The first label, if any, becomes the category.
func paperpileEntryToRecord(entry PaperpileEntry) (reference.PaperRecord, error) {
	if entry.Title == "" {
		return reference.PaperRecord{}, fmt.Errorf("missing required field 'title'")
	}
	if len(entry.Author) == 0 {
		return reference.PaperRecord{}, fmt.Errorf("missing required field 'author'")
	}
	if entry.Published.Year.String() == "" {
		return reference.PaperRecord{}, fmt.Errorf("missing required field 'published.year'")
	}

	year, err := strconv.Atoi(entry.Published.Year.String())
	if err != nil {
		return reference.PaperRecord{}, fmt.Errorf("invalid year: %s", entry.Published.Year.String())
	}

	authors := make([]string, 0, len(entry.Author))
	orcids := make(map[string]any)
	for _, a := range entry.Author {
		name := reference.Author{First: a.First, Last: a.Last}.DisplayName()
		if name == "" {
			continue
		}
		authors = append(authors, name)
		if a.ORCID != "" {
			orcids[name] = a.ORCID
		}
	}

	extra := map[string]any{
		"source":       "paperpile",
		"paperpile_id": entry.ID,
	}
	if len(orcids) > 0 {
		extra["orcids"] = orcids
	}
	if month := dayOrMonth(entry.Published.Month, 12); month > 0 {
		extra["month"] = month
	}
	if day := dayOrMonth(entry.Published.Day, 31); day > 0 {
		extra["day"] = day
	}

	var supplements []any
	for _, att := range entry.Attachments {
		if att.ArticlePDF == 1 {
			extra["pdf_path"] = att.Filename
		} else {
			supplements = append(supplements, att.Filename)
		}
	}
	if len(supplements) > 0 {
		extra["supplement_paths"] = supplements
	}

	// Use citekey as ID, falling back to Paperpile ID if no citekey
	id := entry.Citekey
	if id == "" {
		id = entry.ID
	}

	paper := reference.PaperRecord{
		ID:       id,
		DOI:      entry.DOI,
		Title:    entry.Title,
		Authors:  authors,
		Year:     year,
		Abstract: entry.Abstract,
		Venue:    entry.Journal,
		URL:      entry.URL,
		Extra:    extra,
	}
	if len(entry.Labels) > 0 {
		paper.Category = entry.Labels[0]
	}
	return paper, nil
}

// dayOrMonth parses v, returning 0 when it is empty, malformed, or outside [1, max].
func dayOrMonth(v FlexibleString, max int) int {
	n, err := strconv.Atoi(v.String())
	if err != nil || n < 1 || n > max {
		return 0
	}
	return n
}
