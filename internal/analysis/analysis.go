// Package analysis turns raw paper text into an AnalysisRecord using
// lightweight lexical heuristics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/papergraph/internal/logger"
	"github.com/matsen/papergraph/internal/reference"
)

// ErrEmptyText is returned when there is no text to analyze.
var ErrEmptyText = errors.New("no text to analyze")

// Analyzer produces an analysis record for a document's text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*reference.AnalysisRecord, error)
}

// extractor fills its own fields of the record. Extractors never touch the
// same field, so they can run concurrently against one record.
type extractor struct {
	name string
	run  func(text string, rec *reference.AnalysisRecord)
}

var extractors = []extractor{
	{"summary", func(text string, rec *reference.AnalysisRecord) { rec.Summary = Summarize(text) }},
	{"sentiment", func(text string, rec *reference.AnalysisRecord) { rec.Sentiment = neutralSentiment() }},
	{"keywords", func(text string, rec *reference.AnalysisRecord) { rec.Keywords = Keywords(text) }},
	{"entities", func(text string, rec *reference.AnalysisRecord) { rec.Entities = Entities(text) }},
	{"topics", func(text string, rec *reference.AnalysisRecord) { rec.Topics = Topics(text) }},
	{"citations", func(text string, rec *reference.AnalysisRecord) { rec.Citations = Citations(text) }},
	{"methodology", func(text string, rec *reference.AnalysisRecord) { rec.Methodology = Methodology(text) }},
	{"findings", func(text string, rec *reference.AnalysisRecord) { rec.Findings = Findings(text) }},
}

// Heuristic is the default Analyzer. It runs every extractor in parallel and
// joins the results into a single record.
type Heuristic struct {
	log *logger.Logger
}

// NewHeuristic returns a Heuristic analyzer. A nil logger disables logging.
func NewHeuristic(log *logger.Logger) *Heuristic {
	if log == nil {
		log = logger.Nop()
	}
	return &Heuristic{log: log.With("component", "analysis")}
}

// Analyze runs all extractors over text. It fails only when text is blank or
// ctx is cancelled before the extractors finish.
func (h *Heuristic) Analyze(ctx context.Context, text string) (*reference.AnalysisRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	rec := &reference.AnalysisRecord{}

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range extractors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("%s: %w", ex.name, err)
			}
			ex.run(text, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing text: %w", err)
	}

	h.log.Debug("text analyzed",
		"chars", len(text),
		"keywords", len(rec.Keywords),
		"topics", len(rec.Topics),
		"citations", len(rec.Citations),
		"entities", len(rec.Entities),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func neutralSentiment() *reference.Sentiment {
	return &reference.Sentiment{Label: "NEUTRAL", Score: 0.5}
}
