package collect

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// UnknownVersion is used when a file carries no version information.
const UnknownVersion = "unknown"

// timestampLayouts are tried in order when parsing timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// engineMetadata is the metadata block written by the engine's performance suite.
type engineMetadata struct {
	Timestamp string `json:"timestamp"`
	TestGroup string `json:"testGroup"`
	TestFile  string `json:"testFile"`
	Format    string `json:"format"`
	Version   string `json:"version"`
}

// entryDocument is a CollectionEntry with a raw timestamp.
type entryDocument struct {
	AppVersion string              `json:"app_version"`
	Timestamp  string              `json:"timestamp"`
	TestGroup  string              `json:"test_group"`
	TestFile   string              `json:"test_file"`
	FilePath   string              `json:"file_path"`
	Results    []schema.TestResult `json:"results"`
}

// fileShape detects which of the accepted shapes a document has.
type fileShape struct {
	Metadata   *engineMetadata     `json:"metadata"`
	Results    []schema.TestResult `json:"results"`
	Data       []entryDocument     `json:"data"`
	AppVersion *string             `json:"app_version"`
	TestGroup  *string             `json:"test_group"`
}

var errUnknownShape = errors.New("unrecognized document shape")

// parseFile reads one result file and returns the entries it holds.
// Notes are non-fatal problems such as unparsable timestamps. All errors are *contract.ParseError.
func parseFile(path string) ([]schema.CollectionEntry, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &contract.ParseError{Path: path, Err: err}
	}
	entries, notes, err := parseDocument(data, path)
	if err != nil {
		return nil, nil, &contract.ParseError{Path: path, Err: err}
	}
	wrapped := make([]error, 0, len(notes))
	for _, n := range notes {
		wrapped = append(wrapped, &contract.ParseError{Path: path, Err: n})
	}
	return entries, wrapped, nil
}

// parseDocument decodes an engine file, a single flat entry or an aggregated document.
func parseDocument(data []byte, path string) ([]schema.CollectionEntry, []error, error) {
	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, nil, err
	}

	var notes []error
	switch {
	case shape.Data != nil:
		entries := make([]schema.CollectionEntry, 0, len(shape.Data))
		for i, doc := range shape.Data {
			entry, note := doc.toEntry()
			if note != nil {
				notes = append(notes, fmt.Errorf("entry %d: %w", i, note))
			}
			entries = append(entries, entry)
		}
		return entries, notes, nil

	case shape.Metadata != nil:
		ts, note := parseTimestamp(shape.Metadata.Timestamp)
		if note != nil {
			notes = append(notes, note)
		}
		return []schema.CollectionEntry{{
			AppVersion: engineVersion(shape.Metadata, shape.Results),
			Timestamp:  ts,
			TestGroup:  shape.Metadata.TestGroup,
			TestFile:   shape.Metadata.TestFile,
			FilePath:   path,
			Results:    shape.Results,
		}}, notes, nil

	case shape.AppVersion != nil || shape.TestGroup != nil:
		var doc entryDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, err
		}
		if doc.FilePath == "" {
			doc.FilePath = path
		}
		entry, note := doc.toEntry()
		if note != nil {
			notes = append(notes, note)
		}
		return []schema.CollectionEntry{entry}, notes, nil
	}

	return nil, nil, errUnknownShape
}

// toEntry converts the document, defaulting a missing version.
// A bad timestamp leaves the zero time and is returned as a note.
func (d entryDocument) toEntry() (schema.CollectionEntry, error) {
	ts, note := parseTimestamp(d.Timestamp)
	version := d.AppVersion
	if version == "" {
		version = UnknownVersion
	}
	return schema.CollectionEntry{
		AppVersion: version,
		Timestamp:  ts,
		TestGroup:  d.TestGroup,
		TestFile:   d.TestFile,
		FilePath:   d.FilePath,
		Results:    d.Results,
	}, note
}

// toStoredEntry converts an entry of an aggregated document without normalizing it.
func (d entryDocument) toStoredEntry() (schema.CollectionEntry, error) {
	ts, note := parseStoredTimestamp(d.Timestamp)
	return schema.CollectionEntry{
		AppVersion: d.AppVersion,
		Timestamp:  ts,
		TestGroup:  d.TestGroup,
		TestFile:   d.TestFile,
		FilePath:   d.FilePath,
		Results:    d.Results,
	}, note
}

// engineVersion picks the version of an engine file.
func engineVersion(meta *engineMetadata, results []schema.TestResult) string {
	if meta.Version != "" {
		return meta.Version
	}
	for _, r := range results {
		if r.TestMetadata != nil && r.TestMetadata.Version != "" {
			return r.TestMetadata.Version
		}
	}
	return UnknownVersion
}

// parseStoredTimestamp keeps the offset of an RFC 3339 timestamp.
func parseStoredTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
		return t, nil
	}
	return parseTimestamp(s)
}

// parseTimestamp parses an ISO-8601 timestamp into UTC.
// An empty string is the zero time.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
