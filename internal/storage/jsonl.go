// Package storage persists ingestion entries as JSONL and indexes them in an
// ephemeral SQLite database.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/papergraph/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// Entries carry full analysis records, so lines can be long.
const MaxJSONLLineCapacity = 4 * 1024 * 1024

// ReadAll reads all entries from a JSONL file. A missing file reads as empty.
func ReadAll(path string) ([]reference.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening papers file: %w", err)
	}
	defer f.Close()

	var entries []reference.Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e reference.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading papers file: %w", err)
	}

	return entries, nil
}

// Append adds an entry to the end of a JSONL file.
func Append(path string, e reference.Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening papers file for append: %w", err)
	}
	defer f.Close()

	if err := writeEntry(f, e); err != nil {
		return fmt.Errorf("writing entry %s: %w", e.Paper.ID, err)
	}
	return nil
}

// WriteAll writes all entries to a JSONL file, replacing existing content.
// The file is written to a temporary sibling and renamed into place.
func WriteAll(path string, entries []reference.Entry) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating papers file: %w", err)
	}

	for i, e := range entries {
		if err := writeEntry(f, e); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing papers file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing papers file: %w", err)
	}
	return nil
}

func writeEntry(f *os.File, e reference.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// FindByID returns the index of the entry whose paper has the given id.
func FindByID(entries []reference.Entry, id string) (int, bool) {
	for i, e := range entries {
		if e.Paper.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindByDOI returns the index of the entry whose paper has the given DOI.
func FindByDOI(entries []reference.Entry, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, e := range entries {
		if e.Paper.DOI == doi {
			return i, true
		}
	}
	return -1, false
}

// Compact drops superseded entries: for each paper id only the last entry
// is kept, at the position of that last occurrence.
func Compact(entries []reference.Entry) []reference.Entry {
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.Paper.ID] = i
	}
	out := make([]reference.Entry, 0, len(last))
	for i, e := range entries {
		if last[e.Paper.ID] == i {
			out = append(out, e)
		}
	}
	return out
}
