package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/matsen/papergraph/internal/analysis"
	"github.com/matsen/papergraph/internal/config"
	"github.com/matsen/papergraph/internal/graph"
	"github.com/matsen/papergraph/internal/logger"
	"github.com/matsen/papergraph/internal/reference"
	"github.com/matsen/papergraph/internal/storage"
)

// mustReadEntries reads papers.jsonl, exits on error.
func mustReadEntries(repoRoot string) []reference.Entry {
	entries, err := storage.ReadAll(config.PapersPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading papers: %v", err)
	}
	return entries
}

// buildGraph replays entries into a fresh graph in file order.
func buildGraph(entries []reference.Entry, log *logger.Logger) *graph.Graph {
	g := graph.New(graph.WithLogger(log))
	for _, e := range entries {
		g.AddPaper(e.Paper, e.Analysis)
	}
	return g
}

// mustBuildGraph replays the repository's papers into a fresh graph.
func mustBuildGraph(repoRoot string) *graph.Graph {
	entries := mustReadEntries(repoRoot)
	appLog.Debug("replaying papers", "entries", len(entries))
	return buildGraph(entries, appLog)
}

// mustOpenIndex opens the SQLite index, rebuilding it when it is missing or
// older than papers.jsonl. The caller must Close the returned DB.
func mustOpenIndex(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	stale := indexIsStale(config.DBPath(repoRoot), config.PapersPath(repoRoot))
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	if stale {
		n, err := db.RebuildFromJSONL(config.PapersPath(repoRoot))
		if err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding index: %v", err)
		}
		appLog.Debug("index rebuilt", "papers", n)
	}
	return db
}

// indexIsStale reports whether the index at dbPath predates the JSONL file.
func indexIsStale(dbPath, jsonlPath string) bool {
	dbInfo, err := os.Stat(dbPath)
	if err != nil {
		return true
	}
	srcInfo, err := os.Stat(jsonlPath)
	if err != nil {
		return false
	}
	return srcInfo.ModTime().After(dbInfo.ModTime())
}

// paperText is the text analyzed for a record: its title and abstract.
func paperText(p reference.PaperRecord, extra ...string) string {
	parts := []string{}
	for _, s := range append([]string{p.Title, p.Abstract}, extra...) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}

// analyze runs the analyzer over text. Empty text yields an empty record.
func analyze(ctx context.Context, a analysis.Analyzer, text string) (*reference.AnalysisRecord, error) {
	rec, err := a.Analyze(ctx, text)
	if errors.Is(err, analysis.ErrEmptyText) {
		return &reference.AnalysisRecord{}, nil
	}
	return rec, err
}

// newEntry analyzes a paper record and pairs it with the result.
func newEntry(ctx context.Context, a analysis.Analyzer, p reference.PaperRecord, extraText ...string) (reference.Entry, error) {
	rec, err := analyze(ctx, a, paperText(p, extraText...))
	if err != nil {
		return reference.Entry{}, fmt.Errorf("analyzing %s: %w", p.ID, err)
	}
	e := reference.Entry{Paper: p, Analysis: rec}
	if err := e.ValidateForCreate(); err != nil {
		return reference.Entry{}, err
	}
	return e, nil
}

// jsonlSink appends entries to papers.jsonl. Safe for concurrent use.
type jsonlSink struct {
	mu   sync.Mutex
	path string
}

func (s *jsonlSink) Record(ctx context.Context, e reference.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.Append(s.path, e)
}

// mustAppendEntries appends entries to papers.jsonl, exits on error.
func mustAppendEntries(repoRoot string, entries []reference.Entry) {
	sink := &jsonlSink{path: config.PapersPath(repoRoot)}
	for _, e := range entries {
		if err := sink.Record(context.Background(), e); err != nil {
			exitWithError(ExitError, "storing %s: %v", e.Paper.ID, err)
		}
	}
}

// AddResult describes one stored paper.
type AddResult struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Action   string   `json:"action"` // added, replaced, skipped
	Reason   string   `json:"reason,omitempty"`
	Topics   []string `json:"topics,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

func newAddResult(e reference.Entry, action string) AddResult {
	r := AddResult{ID: e.Paper.ID, Title: e.Paper.Title, Action: action}
	if e.Analysis != nil {
		r.Topics = e.Analysis.Topics
		r.Keywords = e.Analysis.Keywords
	}
	return r
}

// actionFor classifies an entry against the stored ones.
func actionFor(existing []reference.Entry, e reference.Entry) string {
	if _, ok := storage.FindByID(existing, e.Paper.ID); ok {
		return "replaced"
	}
	return "added"
}

func printAddResultsHuman(results []AddResult) {
	for _, r := range results {
		line := fmt.Sprintf("%-8s %s  %s", r.Action, r.ID, truncateString(r.Title, SearchTitleMaxLen))
		if r.Reason != "" {
			line += "  (" + r.Reason + ")"
		}
		fmt.Println(line)
		if len(r.Topics) > 0 {
			fmt.Printf("         topics: %s\n", strings.Join(r.Topics, ", "))
		}
	}
}
