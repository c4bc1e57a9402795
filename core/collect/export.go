package collect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// WriteCollection writes the aggregated document to path.
// Data goes to a temporary file in the same directory which then replaces the target,
// so readers never observe a partial document.
func WriteCollection(path string, c schema.Collection) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".perfpipe-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if c.Data == nil {
		c.Data = []schema.CollectionEntry{}
	}
	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(c); err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// LoadCollection reads an aggregated document written by WriteCollection.
// Stored versions and timestamp offsets are kept as written.
func LoadCollection(path string) (schema.Collection, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return schema.Collection{}, &contract.InputNotFoundError{Path: path}
	}
	if err != nil {
		return schema.Collection{}, &contract.ParseError{Path: path, Err: err}
	}

	var stored struct {
		Data []entryDocument `json:"data"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return schema.Collection{}, &contract.ParseError{Path: path, Err: err}
	}
	if stored.Data == nil {
		return schema.Collection{}, &contract.ParseError{Path: path, Err: errors.New(`missing "data" array`)}
	}

	c := schema.Collection{Data: make([]schema.CollectionEntry, 0, len(stored.Data))}
	for i, doc := range stored.Data {
		entry, note := doc.toStoredEntry()
		if note != nil {
			contract.LogWarn("Loading collection", &contract.ParseError{Path: path, Err: fmt.Errorf("entry %d: %w", i, note)})
		}
		c.Data = append(c.Data, entry)
	}
	return c, nil
}
