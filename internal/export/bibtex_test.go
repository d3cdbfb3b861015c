package export

import (
	"strings"
	"testing"

	"github.com/matsen/papergraph/internal/reference"
)

func TestToBibTeX_Article(t *testing.T) {
	p := reference.PaperRecord{
		ID:       "1706.03762",
		DOI:      "10.48550/arXiv.1706.03762",
		Title:    "Attention Is All You Need",
		Authors:  []string{"Ashish Vaswani", "Noam Shazeer", "Niki Parmar"},
		Year:     2017,
		Abstract: "The dominant sequence transduction models",
		Venue:    "Advances in Neural Information Processing Systems",
		URL:      "https://arxiv.org/abs/1706.03762",
	}

	got := ToBibTeX(p)

	for _, want := range []string{
		"@article{1706.03762,\n",
		"  author = {Vaswani, Ashish and Shazeer, Noam and Parmar, Niki},\n",
		"  title = {Attention Is All You Need},\n",
		"  journal = {Advances in Neural Information Processing Systems},\n",
		"  year = {2017},\n",
		"  doi = {10.48550/arXiv.1706.03762},\n",
		"  url = {https://arxiv.org/abs/1706.03762},\n",
		"  abstract = {The dominant sequence transduction models},\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q in:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_OptionalFieldsOmitted(t *testing.T) {
	got := ToBibTeX(reference.PaperRecord{ID: "p1", Title: "Bare"})

	for _, field := range []string{"author", "journal", "booktitle", "year", "doi", "url", "abstract"} {
		if strings.Contains(got, field+" = ") {
			t.Errorf("ToBibTeX() should omit %s, got:\n%s", field, got)
		}
	}
	if got != "@article{p1,\n  title = {Bare},\n}\n" {
		t.Errorf("ToBibTeX() = %q", got)
	}
}

func TestEntryType(t *testing.T) {
	tests := []struct {
		venue string
		want  string
	}{
		{"Nature", "article"},
		{"arXiv", "article"},
		{"", "article"},
		{"Proceedings of ICML 2024", "inproceedings"},
		{"ACL Workshop on Graphs", "inproceedings"},
		{"International Conference on Learning Representations", "inproceedings"},
		{"Symposium on Theory of Computing", "inproceedings"},
	}

	for _, tt := range tests {
		if got := EntryType(tt.venue); got != tt.want {
			t.Errorf("EntryType(%q) = %q, want %q", tt.venue, got, tt.want)
		}
	}
}

func TestToBibTeX_Inproceedings(t *testing.T) {
	got := ToBibTeX(reference.PaperRecord{ID: "c1", Title: "T", Venue: "Proceedings of NeurIPS"})

	if !strings.HasPrefix(got, "@inproceedings{c1,") {
		t.Errorf("ToBibTeX() should be inproceedings, got:\n%s", got)
	}
	if !strings.Contains(got, "booktitle = {Proceedings of NeurIPS}") {
		t.Errorf("ToBibTeX() should use booktitle, got:\n%s", got)
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"single word", []string{"Plato"}, "Plato"},
		{"two words", []string{"Grace Hopper"}, "Hopper, Grace"},
		{"middle name", []string{"John von Neumann"}, "Neumann, John von"},
		{"blank skipped", []string{"  ", "Ada Lovelace"}, "Lovelace, Ada"},
		{"extra spaces", []string{"  Alan   Turing "}, "Turing, Alan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors(%q) = %q, want %q", tt.authors, got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"R&D", `R\&D`},
		{"50% off", `50\% off`},
		{"$x$", `\$x\$`},
		{"a_b", `a\_b`},
		{"{set}", `\{set\}`},
		{"#1", `\#1`},
		{"~home", `\textasciitilde{}home`},
		{"x^2", `x\textasciicircum{}2`},
		{`a\b`, `a\textbackslash{}b`},
	}

	for _, tt := range tests {
		if got := escapeLatex(tt.input); got != tt.want {
			t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCiteKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"1706.03762", "1706.03762"},
		{"10.1000/xyz", "10.1000/xyz"},
		{"smith, 2020", "smith__2020"},
		{"a{b}", "a_b_"},
	}

	for _, tt := range tests {
		if got := CiteKey(tt.id); got != tt.want {
			t.Errorf("CiteKey(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestToBibTeXList(t *testing.T) {
	got := ToBibTeXList([]reference.PaperRecord{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	})
	if strings.Count(got, "@article{") != 2 {
		t.Errorf("ToBibTeXList() should have 2 entries, got:\n%s", got)
	}
	if !strings.Contains(got, "}\n\n@article{b,") {
		t.Errorf("entries should be separated by a blank line, got:\n%s", got)
	}
	if ToBibTeXList(nil) != "" {
		t.Error("ToBibTeXList(nil) should be empty")
	}
}
