package quiz

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a question set document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SupportedMajor is the schemaVersion major this build understands.
const SupportedMajor = "v1"

//go:embed sample.yaml
var sampleYAML []byte

// FormatForPath picks the document format from a file extension.
// Anything that is not .json is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads, validates and parses a question set file.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read question set: %w", err)
	}
	set, err := Parse(data, FormatForPath(path))
	if err != nil {
		var ce *ContentError
		if errors.As(err, &ce) && ce.Source == "" {
			return Set{}, &ContentError{Source: path, Err: ce.Err}
		}
		return Set{}, fmt.Errorf("%s: %w", path, err)
	}
	if set.ID == "" {
		set.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return set, nil
}

// Parse decodes a question set document, validates it against the schema and
// checks schema version compatibility. An empty set yields a ContentError.
func Parse(data []byte, format Format) (Set, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return Set{}, err
	}
	if err := validateDocument(doc); err != nil {
		return Set{}, err
	}

	// Re-encode the validated document so both formats share one decode path.
	canonical, err := json.Marshal(doc)
	if err != nil {
		return Set{}, fmt.Errorf("encode document: %w", err)
	}
	var set Set
	if err := json.Unmarshal(canonical, &set); err != nil {
		return Set{}, fmt.Errorf("decode question set: %w", err)
	}

	if err := checkVersion(set.SchemaVersion); err != nil {
		return Set{}, err
	}
	if len(set.Questions) == 0 {
		return Set{}, &ContentError{Err: ErrNoQuestions}
	}
	return set, nil
}

// Sample returns the built-in question set.
func Sample() Set {
	set, err := Parse(sampleYAML, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded sample question set is invalid: %v", err))
	}
	return set
}

func decodeDocument(data []byte, format Format) (any, error) {
	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("parse json: multiple documents are not supported")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		// YAML scalars decode to int/bool; round-trip through JSON so the
		// schema validator sees plain JSON values.
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		doc = nil
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown question set format %q", format)
	}
	if doc == nil {
		return nil, &ContentError{Err: ErrNoQuestions}
	}
	return doc, nil
}

// checkVersion accepts an empty version (treated as v1) or any valid semver
// with the supported major.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid schemaVersion %q: want semantic version like v1.0.0", v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("unsupported schemaVersion %s: this build reads %s.x", v, SupportedMajor)
	}
	return nil
}
