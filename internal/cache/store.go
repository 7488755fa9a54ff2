package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clipsift/clipsift/internal/media"
	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("CacheStore")

const resultFilename = "result.json"

// ErrMiss is returned by Lookup for absent entries, and for entries
// which failed validation and must be re-extracted. Cache corruption
// is never surfaced as a distinct error to callers.
var ErrMiss = errors.New("cache miss")

// Store is a keyed, validated, on-disk persistence layer for
// extraction results. Each entry is a directory named by content ID
// holding the serialized result plus the physical asset files it
// references; asset paths inside the serialized form are
// entry-relative, making the whole cache directory relocatable.
type Store struct {
	rootDir string
}

// New creates a Store rooted at the directory provided, creating it
// when missing. A root path pointing at an existing file is an error.
func New(rootDir string) (*Store, error) {
	if info, err := os.Stat(rootDir); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("cache root '%s' is not a directory", rootDir)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(rootDir, os.ModeDir|os.ModePerm); err != nil {
			return nil, fmt.Errorf("cache root '%s' could not be created: %w", rootDir, err)
		}
	} else {
		return nil, fmt.Errorf("cache root '%s' could not be accessed: %w", rootDir, err)
	}

	return &Store{rootDir: rootDir}, nil
}

// EntryDir returns the directory a given content ID's entry lives
// in (whether or not it exists yet). The pipeline downloads assets
// straight in to this directory so that Save only needs to write
// the result document alongside them.
func (store *Store) EntryDir(contentID string) string {
	return filepath.Join(store.rootDir, contentID)
}

// Lookup reads and validates the cache entry for the content ID
// provided. Every asset file referenced by the stored result must
// still exist on disk; any missing file invalidates the whole entry
// (no partial reuse) and ErrMiss is returned so extraction re-runs.
func (store *Store) Lookup(contentID string) (*media.ExtractionResult, error) {
	entryDir := store.EntryDir(contentID)

	raw, err := os.ReadFile(filepath.Join(entryDir, resultFilename))
	if err != nil {
		return nil, ErrMiss
	}

	var result media.ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Emit(logger.WARNING, "entry %s holds a malformed result document, treating as miss\n", contentID)
		return nil, ErrMiss
	}

	// Re-expand the entry-relative asset names back to absolute
	// paths rooted at wherever the cache root currently lives.
	for i, asset := range result.Assets {
		absolute := filepath.Join(entryDir, asset.LocalPath)
		if _, err := os.Stat(absolute); err != nil {
			log.Emit(logger.WARNING, "entry %s references missing asset %s, invalidating entry\n", contentID, asset.LocalPath)
			return nil, ErrMiss
		}

		result.Assets[i].LocalPath = absolute
	}

	result.FromCache = true
	log.Emit(logger.DEBUG, "cache hit for %s (%d assets)\n", contentID, len(result.Assets))
	return &result, nil
}

// Save persists the result under the content ID provided. Absolute
// asset paths are rewritten to entry-relative filenames before
// serializing so the cache directory stays portable; the caller's
// result is not mutated.
func (store *Store) Save(contentID string, result *media.ExtractionResult) error {
	entryDir := store.EntryDir(contentID)
	if err := os.MkdirAll(entryDir, os.ModeDir|os.ModePerm); err != nil {
		return fmt.Errorf("failed to create cache entry for %s: %w", contentID, err)
	}

	stored := *result
	stored.Assets = make([]media.MediaAsset, len(result.Assets))
	for i, asset := range result.Assets {
		stored.Assets[i] = asset
		stored.Assets[i].LocalPath = filepath.Base(asset.LocalPath)
	}

	document, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result for %s: %w", contentID, err)
	}

	if err := os.WriteFile(filepath.Join(entryDir, resultFilename), document, os.ModePerm); err != nil {
		return fmt.Errorf("failed to write result document for %s: %w", contentID, err)
	}

	log.Emit(logger.DEBUG, "saved cache entry for %s (%d assets)\n", contentID, len(stored.Assets))
	return nil
}
