package workflow

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Load reads, parses, and validates a definition file. The format is
// detected from the extension: .yaml/.yml for YAML, .json for JSON.
func Load(path string) (*Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ParseJSON parses JSON bytes into a validated Definition.
func ParseJSON(data []byte) (*Definition, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &def, nil
}

// ParseYAML parses YAML bytes into a validated Definition.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &def, nil
}

// NamedDefinition pairs a loaded definition with the file it came from.
type NamedDefinition struct {
	Path       string
	Definition *Definition
}

// LoadGlob loads every definition matching pattern, sorted by path.
// Patterns with ** recurse into subdirectories. A pattern that matches
// nothing returns an empty slice, not an error; a file that fails to
// load aborts the whole batch.
func LoadGlob(pattern string) ([]*NamedDefinition, error) {
	matches, err := Glob(pattern)
	if err != nil {
		return nil, err
	}

	defs := make([]*NamedDefinition, 0, len(matches))
	for _, match := range matches {
		def, err := Load(match)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", match, err)
		}
		defs = append(defs, &NamedDefinition{Path: match, Definition: def})
	}
	return defs, nil
}

// Glob expands a definition file pattern to matching paths, sorted for
// deterministic ordering. doublestar handles ** recursion; simple
// patterns go through filepath.Glob.
func Glob(pattern string) ([]string, error) {
	var (
		matches []string
		err     error
	)
	if strings.Contains(pattern, "**") {
		matches, err = doublestar.FilepathGlob(pattern)
	} else {
		matches, err = filepath.Glob(pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
