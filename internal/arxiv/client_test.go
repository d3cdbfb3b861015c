package arxiv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"golang.org/x/time/rate"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <updated>2023-08-02T00:41:18Z</updated>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models
 are based on recurrent networks.  </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:doi>10.48550/arXiv.1706.03762</arxiv:doi>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title></title>
  </entry>
</feed>`

const emptyFeed = `<feed xmlns="http://www.w3.org/2005/Atom"><title>ArXiv Query</title></feed>`

const errorFeed = `<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/api/errors#incorrect_id_format_for_abc</id>
    <title>Error</title>
    <summary>incorrect id format for abc</summary>
  </entry>
</feed>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	)
}

func TestSearch(t *testing.T) {
	var gotQuery, gotMax string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		gotMax = r.URL.Query().Get("max_results")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	})

	papers, err := client.Search(context.Background(), "attention transformer", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "all:attention transformer" || gotMax != "5" {
		t.Errorf("query params = %q, %q", gotQuery, gotMax)
	}
	if len(papers) != 1 {
		t.Fatalf("Search() returned %d papers, want 1 (untitled entry dropped)", len(papers))
	}

	want := Paper{
		ID:         "1706.03762v7",
		Title:      "Attention Is All You Need",
		Authors:    []string{"Ashish Vaswani", "Noam Shazeer"},
		Abstract:   "The dominant sequence transduction models are based on recurrent networks.",
		Published:  "2017-06-12T17:57:34Z",
		Updated:    "2023-08-02T00:41:18Z",
		Categories: []string{"cs.CL", "cs.LG"},
		PDFURL:     "http://arxiv.org/pdf/1706.03762v7",
		Link:       "http://arxiv.org/abs/1706.03762v7",
		DOI:        "10.48550/arXiv.1706.03762",
	}
	if !reflect.DeepEqual(papers[0], want) {
		t.Errorf("Search()[0] = %+v\nwant %+v", papers[0], want)
	}
}

func TestSearch_FieldPrefixAndDefaults(t *testing.T) {
	var gotQuery, gotMax string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		gotMax = r.URL.Query().Get("max_results")
		w.Write([]byte(emptyFeed))
	})

	papers, err := client.Search(context.Background(), "au:Vaswani", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("Search() = %v, want none", papers)
	}
	if gotQuery != "au:Vaswani" || gotMax != "10" {
		t.Errorf("query params = %q, %q", gotQuery, gotMax)
	}

	if _, err := client.Search(context.Background(), "  ", 1); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Search(blank) error = %v, want ErrEmptyQuery", err)
	}
}

func TestGetByID(t *testing.T) {
	var gotIDs string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("id_list")
		w.Write([]byte(sampleFeed))
	})

	p, err := client.GetByID(context.Background(), "https://arxiv.org/abs/1706.03762v7")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if gotIDs != "1706.03762" {
		t.Errorf("id_list = %q, want 1706.03762", gotIDs)
	}
	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", p.Title)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyFeed))
	})

	_, err := client.GetByID(context.Background(), "2401.99999")
	if !IsNotFound(err) {
		t.Errorf("GetByID() error = %v, want not found", err)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"error entry", http.StatusOK, errorFeed, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 400 && apiErr.Message == "incorrect id format for abc"
		}},
		{"rate limited", http.StatusTooManyRequests, "", IsRateLimited},
		{"unavailable", http.StatusServiceUnavailable, "", IsRateLimited},
		{"not found", http.StatusNotFound, "", IsNotFound},
		{"html body", http.StatusOK, "<html><body>oops</body></html>", func(err error) bool {
			return errors.Is(err, ErrInvalidResponse)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.GetByID(context.Background(), "abc")
			if err == nil || !tt.check(err) {
				t.Errorf("GetByID() error = %v", err)
			}
		})
	}
}

func TestQuery_CancelledContext(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://127.0.0.1:0"),
		WithLimiter(rate.NewLimiter(rate.Every(RequestInterval), 0)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Search(ctx, "anything", 1); err == nil {
		t.Error("Search() with cancelled context should fail")
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://arxiv.org/abs/2401.12345", "2401.12345", true},
		{"https://arxiv.org/pdf/2401.12345v2", "2401.12345", true},
		{"1706.03762", "1706.03762", true},
		{"see arXiv:2105.0001 for details", "2105.0001", true},
		{"hep-th/9901001", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractID(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCategoryName(t *testing.T) {
	tests := map[string]string{
		"cs.LG":             "Machine Learning",
		"stat.ML":           "Machine Learning",
		"cs.CL":             "Computer Science",
		"quant-ph":          "Quantum Physics",
		"math.ST":           "Mathematics",
		"q-bio.PE":          "Biology",
		"astro-ph.GA":       "Physics",
		"hep-th":            "Physics",
		"econ.EM":           "Economics",
		"unknown-archive.X": "unknown-archive.X",
	}
	for term, want := range tests {
		if got := CategoryName(term); got != want {
			t.Errorf("CategoryName(%q) = %q, want %q", term, got, want)
		}
	}
}

func TestPaper_ToRecord(t *testing.T) {
	p := Paper{
		ID:         "1706.03762v7",
		Title:      "Attention Is All You Need",
		Authors:    []string{"Ashish Vaswani"},
		Abstract:   "Abstract.",
		Published:  "2017-06-12T17:57:34Z",
		Categories: []string{"cs.CL", "cs.LG"},
		PDFURL:     "http://arxiv.org/pdf/1706.03762v7",
		Link:       "http://arxiv.org/abs/1706.03762v7",
	}

	rec := p.ToRecord()
	if rec.ID != "1706.03762v7" || rec.Year != 2017 || rec.Category != "Computer Science" {
		t.Errorf("ToRecord() = %+v", rec)
	}
	if rec.URL != p.Link || rec.Abstract != "Abstract." {
		t.Errorf("ToRecord() URL/Abstract = %q, %q", rec.URL, rec.Abstract)
	}
	if rec.Extra["arxiv_id"] != "1706.03762v7" || rec.Extra["pdf_url"] != p.PDFURL {
		t.Errorf("ToRecord().Extra = %v", rec.Extra)
	}

	rec.Authors[0] = "changed"
	if p.Authors[0] != "Ashish Vaswani" {
		t.Error("ToRecord() shares the authors slice")
	}

	if (Paper{Published: "n/a"}).Year() != 0 {
		t.Error("Year() of a malformed date should be 0")
	}
}
