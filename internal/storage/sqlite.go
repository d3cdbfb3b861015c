package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/matsen/papergraph/internal/reference"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			doi TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			venue TEXT,
			category TEXT,
			year INTEGER,
			citations INTEGER NOT NULL DEFAULT 0,
			entry_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Standalone full-text index; rebuilt together with papers.
		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			id,
			title,
			abstract,
			authors_text,
			topics_text,
			keywords_text
		);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and reloads it from a JSONL file in a
// single transaction. Later entries with a repeated id replace earlier ones.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	entries, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM papers_fts"); err != nil {
		return 0, fmt.Errorf("clearing papers_fts table: %w", err)
	}

	papersStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO papers (id, doi, title, abstract, venue, category, year, citations, entry_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	ftsDelete, err := tx.Prepare(`DELETE FROM papers_fts WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts delete: %w", err)
	}
	defer ftsDelete.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO papers_fts (id, title, abstract, authors_text, topics_text, keywords_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, e := range entries {
		p := e.Paper
		entryJSON, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encoding entry %s: %w", p.ID, err)
		}

		if _, err := papersStmt.Exec(
			p.ID, nullableString(p.DOI), p.Title, nullableString(p.Abstract),
			nullableString(p.Venue), nullableString(p.Category), p.Year, p.Citations,
			string(entryJSON),
		); err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}

		var topics, keywords []string
		if e.Analysis != nil {
			topics, keywords = e.Analysis.Topics, e.Analysis.Keywords
		}
		if _, err := ftsDelete.Exec(p.ID); err != nil {
			return 0, fmt.Errorf("clearing fts for %s: %w", p.ID, err)
		}
		if _, err := ftsStmt.Exec(
			p.ID, p.Title, p.Abstract,
			strings.Join(p.Authors, ", "),
			strings.Join(topics, ", "),
			strings.Join(keywords, ", "),
		); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return d.Count()
}

// GetByID retrieves an entry by its paper id. It returns nil, nil when absent.
func (d *DB) GetByID(id string) (*reference.Entry, error) {
	row := d.db.QueryRow(`SELECT entry_json FROM papers WHERE id = ?`, id)
	return scanEntry(row)
}

// Search performs a full-text search over titles, abstracts, authors,
// topics, and keywords.
func (d *DB) Search(query string, limit int) ([]reference.Entry, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
type SearchFilters struct {
	Keyword  string   // General keyword search across all indexed text
	Authors  []string // Author names (AND logic, prefix matching per name part)
	Topic    string   // Search in analysis topics only
	YearFrom int      // Minimum publication year (0 = no minimum)
	YearTo   int      // Maximum publication year (0 = no maximum)
	Category string   // Exact category match
}

// SearchWithFilters returns entries matching all given criteria, ordered by id.
// A limit of zero or less returns every match.
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]reference.Entry, error) {
	var ftsTerms []string
	var args []any

	if q := prepareFTSQuery(filters.Keyword); q != "" {
		ftsTerms = append(ftsTerms, q)
	}
	if q := prepareFTSQuery(filters.Topic); q != "" {
		ftsTerms = append(ftsTerms, "topics_text:("+q+")")
	}
	for _, author := range filters.Authors {
		if q := prepareAuthorQuery(author); q != "" {
			ftsTerms = append(ftsTerms, "authors_text:"+q)
		}
	}

	query := `SELECT entry_json FROM papers WHERE 1=1`
	if len(ftsTerms) > 0 {
		query += ` AND id IN (SELECT id FROM papers_fts WHERE papers_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	}
	if filters.YearFrom > 0 {
		query += " AND year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListAll returns all entries ordered by id, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Entry, error) {
	return d.SearchWithFilters(SearchFilters{}, limit)
}

// Count returns the total number of indexed papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*reference.Entry, error) {
	var raw string
	if err := s.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var e reference.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("decoding stored entry: %w", err)
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]reference.Entry, error) {
	var entries []reference.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, rows.Err()
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// prepareAuthorQuery turns a name into an FTS5 prefix query that matches any
// of its parts, so "Tim" also finds "Timothy".
func prepareAuthorQuery(author string) string {
	parts := strings.Fields(author)
	if len(parts) == 0 {
		return ""
	}

	terms := make([]string, len(parts))
	for i, part := range parts {
		terms[i] = "\"" + strings.ReplaceAll(part, "\"", "\"\"") + "\"*"
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}
