package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/papergraph/internal/analysis"
	"github.com/matsen/papergraph/internal/pdf"
	"github.com/matsen/papergraph/internal/reference"
	"github.com/matsen/papergraph/internal/storage"
	"github.com/spf13/cobra"
)

var (
	addID        string
	addTitle     string
	addAuthors   []string
	addYear      int
	addCategory  string
	addCitations int
	addAbstract  string
	addDOI       string
	addVenue     string
	addURL       string
	addTextFile  string
	addJSONFile  string

	addPDFMaxPages int
	addPDFForce    bool
)

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "Paper id (required unless --json is used)")
	addCmd.Flags().StringVar(&addTitle, "title", "", "Paper title")
	addCmd.Flags().StringArrayVarP(&addAuthors, "author", "a", nil, "Author display name (repeatable, in listing order)")
	addCmd.Flags().IntVar(&addYear, "year", 0, "Publication year")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category (drives node color)")
	addCmd.Flags().IntVar(&addCitations, "citations", 0, "Citation count")
	addCmd.Flags().StringVar(&addAbstract, "abstract", "", "Abstract text")
	addCmd.Flags().StringVar(&addDOI, "doi", "", "DOI")
	addCmd.Flags().StringVar(&addVenue, "venue", "", "Journal or conference")
	addCmd.Flags().StringVar(&addURL, "url", "", "Landing page URL")
	addCmd.Flags().StringVar(&addTextFile, "text-file", "", "Plain-text file analyzed along with title and abstract")
	addCmd.Flags().StringVar(&addJSONFile, "json", "", "Read a paper record or {paper, analysis} entry from a file (- for stdin)")
	rootCmd.AddCommand(addCmd)

	addPDFCmd.Flags().IntVar(&addPDFMaxPages, "max-pages", 0, "Pages to read per PDF (default from config)")
	addPDFCmd.Flags().BoolVar(&addPDFForce, "force", false, "Store even when a paper with the same DOI exists")
	rootCmd.AddCommand(addPDFCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a paper to the library",
	Long: `Add a paper from flags or from a JSON file.

The title, abstract, and optional text file are analyzed for topics and
keywords unless the JSON input already carries an analysis. Adding an id
that already exists replaces that paper.

Examples:
  pgraph add --id vaswani2017 --title "Attention Is All You Need" \
    -a "Ashish Vaswani" -a "Noam Shazeer" --year 2017 --category "Machine Learning"
  pgraph add --json entry.json
  cat paper.json | pgraph add --json -`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var addPDFCmd = &cobra.Command{
	Use:   "add-pdf <file>...",
	Short: "Add papers by extracting text from PDFs",
	Long: `Extract text from each PDF, guess its title and DOI, analyze the text,
and store the result. The paper id is the DOI when one is found, otherwise
the file name without extension. PDFs whose DOI is already stored are
skipped unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddPDF,
}

func runAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	existing := mustReadEntries(repoRoot)
	analyzer := analysis.NewHeuristic(appLog)

	var entry reference.Entry
	if addJSONFile != "" {
		e, err := readEntryFile(addJSONFile)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		entry = e
	} else {
		entry.Paper = reference.PaperRecord{
			ID:        strings.TrimSpace(addID),
			Title:     strings.TrimSpace(addTitle),
			Authors:   addAuthors,
			Year:      addYear,
			Category:  addCategory,
			Citations: addCitations,
			Abstract:  addAbstract,
			DOI:       addDOI,
			Venue:     addVenue,
			URL:       addURL,
		}
	}

	if entry.Analysis == nil {
		var extra []string
		if addTextFile != "" {
			data, err := os.ReadFile(addTextFile)
			if err != nil {
				exitWithError(ExitError, "reading text file: %v", err)
			}
			extra = append(extra, string(data))
		}
		e, err := newEntry(cmd.Context(), analyzer, entry.Paper, extra...)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		entry = e
	} else if err := entry.ValidateForCreate(); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	result := newAddResult(entry, actionFor(existing, entry))
	mustAppendEntries(repoRoot, []reference.Entry{entry})

	if humanOutput {
		printAddResultsHuman([]AddResult{result})
	} else {
		outputJSON(result)
	}
	return nil
}

// readEntryFile decodes an entry, or a bare paper record, from path ("-" for stdin).
func readEntryFile(path string) (reference.Entry, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return reference.Entry{}, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return reference.Entry{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseEntry(data)
}

// parseEntry accepts {"paper": ..., "analysis": ...} or a bare paper record.
func parseEntry(data []byte) (reference.Entry, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return reference.Entry{}, fmt.Errorf("parsing entry: %w", err)
	}

	var e reference.Entry
	if _, ok := probe["paper"]; ok {
		if err := json.Unmarshal(data, &e); err != nil {
			return reference.Entry{}, fmt.Errorf("parsing entry: %w", err)
		}
		return e, nil
	}
	if err := json.Unmarshal(data, &e.Paper); err != nil {
		return reference.Entry{}, fmt.Errorf("parsing paper record: %w", err)
	}
	return e, nil
}

func runAddPDF(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	existing := mustReadEntries(repoRoot)
	analyzer := analysis.NewHeuristic(appLog)

	maxPages := addPDFMaxPages
	if maxPages <= 0 {
		maxPages = cfg.MaxPDFPages
	}

	var results []AddResult
	var stored []reference.Entry
	failed := 0
	for _, path := range args {
		doc, err := pdf.Read(path, maxPages)
		if err != nil {
			appLog.Warn("reading pdf failed", "path", path, "error", err)
			results = append(results, AddResult{ID: filepath.Base(path), Action: "skipped", Reason: err.Error()})
			failed++
			continue
		}

		rec := doc.Record()
		if i, ok := storage.FindByDOI(existing, rec.DOI); ok && !addPDFForce {
			results = append(results, AddResult{
				ID: rec.ID, Title: rec.Title, Action: "skipped",
				Reason: "DOI already stored as " + existing[i].Paper.ID,
			})
			continue
		}

		entry, err := newEntry(cmd.Context(), analyzer, rec, doc.Text)
		if err != nil {
			results = append(results, AddResult{ID: rec.ID, Title: rec.Title, Action: "skipped", Reason: err.Error()})
			failed++
			continue
		}
		results = append(results, newAddResult(entry, actionFor(existing, entry)))
		existing = append(existing, entry)
		stored = append(stored, entry)
	}

	mustAppendEntries(repoRoot, stored)

	if humanOutput {
		printAddResultsHuman(results)
	} else {
		outputJSON(results)
	}
	if failed == len(args) {
		os.Exit(ExitDataError)
	}
	return nil
}
