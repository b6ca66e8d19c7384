package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultPath is where `jest --json --outputFile` writes by convention.
const DefaultPath = "test-results.json"

// LoadError is returned when the result document cannot be read or is not a
// usable JSON document. It is the one fatal condition of a report run.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load test results: %v", e.Err)
	}
	return fmt.Sprintf("load test results %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is (or wraps) a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

var errNoSuites = errors.New("document has no testResults array")

// LoadFile reads and parses the result document at path.
func LoadFile(path string) (Report, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	r, err := Load(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return r, nil
}

// Load parses a result document, classifying it once and decoding every
// suite with the chosen shape.
func Load(data []byte) (Report, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse json: %w", err)}
	}
	if doc.TestResults == nil && !doc.Success {
		return nil, &LoadError{Err: errNoSuites}
	}

	shape := ShapeModern
	if len(doc.TestResults) > 0 {
		shape = Classify(doc.TestResults[0])
	}

	switch shape {
	case ShapeLegacy:
		r := &LegacyReport{Summary: doc.Summary, TestResults: make([]LegacySuite, 0, len(doc.TestResults))}
		for i, raw := range doc.TestResults {
			var s LegacySuite
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, &LoadError{Err: fmt.Errorf("parse legacy suite %d: %w", i, err)}
			}
			r.TestResults = append(r.TestResults, s)
		}
		return r, nil
	default:
		r := &ModernReport{Summary: doc.Summary, TestResults: make([]ModernSuite, 0, len(doc.TestResults))}
		for i, raw := range doc.TestResults {
			var s ModernSuite
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, &LoadError{Err: fmt.Errorf("parse modern suite %d: %w", i, err)}
			}
			r.TestResults = append(r.TestResults, s)
		}
		return r, nil
	}
}

// Classify decides the document shape from its first suite entry alone: a
// non-null "testResults" key means modern, anything else legacy.
func Classify(firstSuite json.RawMessage) Shape {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(firstSuite, &probe); err != nil {
		return ShapeLegacy
	}
	nested, ok := probe["testResults"]
	if !ok || bytes.Equal(bytes.TrimSpace(nested), []byte("null")) {
		return ShapeLegacy
	}
	return ShapeModern
}
