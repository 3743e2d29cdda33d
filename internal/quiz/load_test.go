package quiz

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validJSON = `{
  "title": "Capitals",
  "schemaVersion": "v1.2.0",
  "questions": [
    {"text": "Capital of France?", "options": ["Paris", "Rome"], "correctAnswer": "Paris", "subtopic": "Europe"},
    {"text": "Capital of Japan?", "options": ["Osaka", "Tokyo"], "correctAnswer": "Tokyo"}
  ]
}`

const validYAML = `
title: Capitals
questions:
  - text: Capital of France?
    options: [Paris, Rome]
    correctAnswer: Paris
    subtopic: Europe
  - text: Capital of Japan?
    options: [Osaka, Tokyo]
    correctAnswer: Tokyo
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := Load(writeFile(t, "capitals.json", validJSON))
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	fromYAML, err := Load(writeFile(t, "capitals.yaml", validYAML))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}

	if fromJSON.Len() != 2 || fromYAML.Len() != 2 {
		t.Fatalf("lengths = %d, %d, want 2, 2", fromJSON.Len(), fromYAML.Len())
	}
	for i := range fromJSON.Questions {
		j, y := fromJSON.Questions[i], fromYAML.Questions[i]
		if j.Text != y.Text || j.CorrectAnswer != y.CorrectAnswer || j.Subtopic != y.Subtopic {
			t.Errorf("question %d differs: %+v vs %+v", i, j, y)
		}
	}
	if fromJSON.ID != "capitals" {
		t.Errorf("ID = %q, want file stem %q", fromJSON.ID, "capitals")
	}
}

func TestParse_EmptySetIsContentError(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"empty array", `{"questions": []}`, FormatJSON},
		{"empty yaml document", ``, FormatYAML},
		{"yaml empty list", "questions: []\n", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			var ce *ContentError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *ContentError", err)
			}
			if !errors.Is(err, ErrNoQuestions) {
				t.Errorf("err = %v, want wrapping ErrNoQuestions", err)
			}
		})
	}
}

func TestParse_SchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"one option", `{"questions": [{"text": "q", "options": ["a"], "correctAnswer": "a"}]}`},
		{"missing correct answer", `{"questions": [{"text": "q", "options": ["a", "b"]}]}`},
		{"unknown field", `{"questions": [{"text": "q", "options": ["a", "b"], "correctAnswer": "a", "points": 3}]}`},
		{"numeric option", `{"questions": [{"text": "q", "options": [1, 2], "correctAnswer": "1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data), FormatJSON); err == nil {
				t.Fatal("expected schema validation error")
			}
		})
	}
}

func TestParse_SchemaVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"", false},
		{"v1.0.0", false},
		{"v1.9.3", false},
		{"v2.0.0", true},
		{"1.0.0", true},
		{"latest", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			doc := `{"schemaVersion": "` + tt.version + `", "questions": [{"text": "q", "options": ["a", "b"], "correctAnswer": "a"}]}`
			_, err := Parse([]byte(doc), FormatJSON)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(version=%q) err = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "read question set") {
		t.Errorf("err = %v, want read error", err)
	}
}

func TestLoad_ContentErrorCarriesPath(t *testing.T) {
	p := writeFile(t, "empty.json", `{"questions": []}`)
	_, err := Load(p)
	var ce *ContentError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ContentError", err)
	}
	if ce.Source != p {
		t.Errorf("Source = %q, want %q", ce.Source, p)
	}
}

func TestSample(t *testing.T) {
	set := Sample()
	if set.Len() == 0 {
		t.Fatal("sample set is empty")
	}
	if issues := Lint(set); HasErrors(issues) {
		t.Errorf("sample set has lint errors: %v", issues)
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("a/b/quiz.JSON"); got != FormatJSON {
		t.Errorf("FormatForPath(.JSON) = %q", got)
	}
	if got := FormatForPath("quiz.yml"); got != FormatYAML {
		t.Errorf("FormatForPath(.yml) = %q", got)
	}
}
