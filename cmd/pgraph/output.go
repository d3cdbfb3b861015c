package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/papergraph/internal/graph"
	"github.com/matsen/papergraph/internal/reference"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for records search

	SearchTitleMaxLen = 70 // Used in search result summaries
	ListTitleMaxLen   = 50 // Used in node listings
	DetailTitleMaxLen = 70 // Used in get command detail view

	TextWrapWidth = 60
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	appLog.Sync()
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range strings.Fields(text) {
		switch {
		case currentLine.Len() == 0:
			currentLine.WriteString(word)
		case currentLine.Len()+1+len(word) <= width:
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		default:
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return strings.Join(lines, "\n"+indent)
}

func printEntrySummary(num int, e reference.Entry) {
	p := e.Paper
	fmt.Printf("[%d] %s\n", num, p.ID)
	fmt.Printf("    %s\n", truncateString(p.Title, SearchTitleMaxLen))
	if len(p.Authors) > 0 {
		fmt.Printf("    %s\n", reference.FormatAuthors(p.Authors, 3))
	}
	switch {
	case p.Venue != "" && p.Year > 0:
		fmt.Printf("    %s (%d)\n", p.Venue, p.Year)
	case p.Year > 0:
		fmt.Printf("    (%d)\n", p.Year)
	}
	fmt.Println()
}

func printEntryDetail(e reference.Entry) {
	p := e.Paper
	fmt.Println(p.ID)
	fmt.Println(strings.Repeat("=", DetailTitleMaxLen))
	fmt.Println()

	fmt.Printf("Title:    %s\n", wrapText(p.Title, TextWrapWidth, "          "))
	if len(p.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", wrapText(strings.Join(p.Authors, ", "), TextWrapWidth, "          "))
	}
	if p.Year > 0 {
		fmt.Printf("Year:     %d\n", p.Year)
	}
	if p.Venue != "" {
		fmt.Printf("Venue:    %s\n", p.Venue)
	}
	if p.Category != "" {
		fmt.Printf("Category: %s\n", p.Category)
	}
	if p.DOI != "" {
		fmt.Printf("DOI:      %s\n", p.DOI)
	}
	if p.Citations > 0 {
		fmt.Printf("Cited by: %d\n", p.Citations)
	}

	if a := e.Analysis; a != nil {
		if len(a.Topics) > 0 {
			fmt.Printf("Topics:   %s\n", strings.Join(a.Topics, ", "))
		}
		if len(a.Keywords) > 0 {
			fmt.Printf("Keywords: %s\n", wrapText(strings.Join(a.Keywords, ", "), TextWrapWidth, "          "))
		}
		if a.Summary != "" {
			fmt.Println()
			fmt.Printf("Summary:\n  %s\n", wrapText(a.Summary, TextWrapWidth, "  "))
		}
	}

	if p.Abstract != "" {
		fmt.Println()
		fmt.Printf("Abstract:\n  %s\n", wrapText(p.Abstract, TextWrapWidth, "  "))
	}
}

func printNodeLine(n graph.Node) {
	extra := ""
	if papers := n.Papers(); len(papers) > 0 {
		extra = fmt.Sprintf("  (%d papers)", len(papers))
	}
	fmt.Printf("%-8s %-40s %s%s\n", n.Kind, n.ID, truncateString(n.Label, ListTitleMaxLen), extra)
}

func printNodesHuman(nodes []graph.Node, empty string) {
	if len(nodes) == 0 {
		fmt.Println(empty)
		return
	}
	for _, n := range nodes {
		printNodeLine(n)
	}
}

func printStatsHuman(s graph.Stats) {
	fmt.Printf("Nodes: %d\n", s.Total.Nodes)
	fmt.Printf("  papers:    %d\n", s.Nodes.Papers)
	fmt.Printf("  authors:   %d\n", s.Nodes.Authors)
	fmt.Printf("  topics:    %d\n", s.Nodes.Topics)
	fmt.Printf("  keywords:  %d\n", s.Nodes.Keywords)
	fmt.Printf("  citations: %d\n", s.Nodes.Citations)
	fmt.Printf("Edges: %d\n", s.Total.Edges)
	fmt.Printf("  authorships:    %d\n", s.Edges.Authorships)
	fmt.Printf("  topics:         %d\n", s.Edges.Topics)
	fmt.Printf("  collaborations: %d\n", s.Edges.Collaborations)
	fmt.Printf("  similarities:   %d\n", s.Edges.Similarities)
	fmt.Printf("  citations:      %d\n", s.Edges.Citations)
}
