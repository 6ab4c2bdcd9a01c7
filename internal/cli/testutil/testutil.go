// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/reportcols/internal/cli/output"
)

// Project ids used by Definition.
const (
	MasterProject = "3fd631d8-0b5a-4d75-be1a-5b500cc1c90c"
	SlaveProject  = "0ab7516e-f492-4bc6-9bf4-56fb106e1ab8"
)

// Definition is a multi-subject report with one mapped slave project.
const Definition = `report:
  id: weekly-nps
  project: 3fd631d8-0b5a-4d75-be1a-5b500cc1c90c
  used_questions: [Q1]
projects:
  - id: 3fd631d8-0b5a-4d75-be1a-5b500cc1c90c
    multi_subject: true
    questions:
      - {id: Q5, kind: plain, single_display: true}
      - {id: Q1, kind: plain}
  - id: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8
    questions:
      - {id: Q1, kind: plain, single_display: true}
      - {id: Q2, kind: plain}
mappings:
  - {slave_project: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8, master_question: Q5, slave_question: Q1}
  - {slave_project: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8, master_question: Q1, slave_question: Q2}
`

// SetupTestProject creates a temporary working directory holding
// reports/weekly.yaml and returns the directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "reports"), 0o750); err != nil {
		t.Fatalf("failed to create reports directory: %v", err)
	}
	WriteFile(t, filepath.Join(tmpDir, "reports", "weekly.yaml"), Definition)
	return tmpDir
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// NewTestRendererTable creates a new test renderer in table mode.
func NewTestRendererTable() *TestRenderer {
	return NewTestRenderer(output.ModeTable, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if fenceCount := strings.Count(md, "```"); fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
