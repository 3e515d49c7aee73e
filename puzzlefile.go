package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bodul/xwplay/xword"
)

type puzzleFormat int

const (
	formatJSON puzzleFormat = iota
	formatYAML
)

var puzzlePatterns = []string{"*.json", "*.yaml", "*.yml"}

// formatForName picks the decoder from a file extension, JSON by default.
func formatForName(name string) puzzleFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

// formatForContentType picks the decoder from a request Content-Type.
func formatForContentType(ct string) puzzleFormat {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return formatJSON
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return formatYAML
	}
	return formatJSON
}

// decodeRaw reads one puzzle record without validating it.
func decodeRaw(r io.Reader, f puzzleFormat) (*xword.Raw, error) {
	var raw xword.Raw
	switch f {
	case formatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return &raw, nil
}

// readPuzzle decodes and loads a puzzle in the given format.
func readPuzzle(r io.Reader, f puzzleFormat) (*xword.Puzzle, error) {
	raw, err := decodeRaw(r, f)
	if err != nil {
		return nil, err
	}
	return xword.Load(raw)
}

// LoadPuzzleFile reads a JSON or YAML puzzle from disk.
func LoadPuzzleFile(path string) (*xword.Puzzle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := readPuzzle(f, formatForName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadPuzzleDir adds every puzzle file found in dir to the store. Files that
// fail to load are skipped and reported in the joined error.
func (s *Store) LoadPuzzleDir(dir string) (int, error) {
	var paths []string
	for _, pattern := range puzzlePatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	var errs []error
	n := 0
	for _, path := range paths {
		p, err := LoadPuzzleFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e := s.SavePuzzle(p, sourceFile)
		log.Printf("Grille chargée : %s (%s)", filepath.Base(path), e.ID)
		n++
	}
	return n, errors.Join(errs...)
}
