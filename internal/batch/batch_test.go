package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/sectionize/internal/config"
	"github.com/dgallion1/sectionize/internal/record"
)

const guideMarkdown = `# Guide

intro words here

## Alpha

first section body

## Beta

second section body
`

func testConfig() config.Config {
	return config.Config{
		Language:        "de",
		MatchMode:       config.ModeFuzzy,
		ScanDirection:   config.DirectionForward,
		ToleranceRatio:  0.1,
		NoOutlinePolicy: config.PolicySkip,
		WorkerCount:     1,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFile_MarkdownSections(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.md", guideMarkdown)

	recs, err := ConvertFile(path, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	for i, want := range []string{"Alpha", "Beta"} {
		if recs[i].Paragraph != want {
			t.Errorf("record %d paragraph = %q, want %q", i, recs[i].Paragraph, want)
		}
		if recs[i].Title != "Guide" {
			t.Errorf("record %d title = %q, want Guide", i, recs[i].Title)
		}
		if recs[i].Topic != "guide.md" {
			t.Errorf("record %d topic = %q, want guide.md", i, recs[i].Topic)
		}
		if recs[i].Language != "de" {
			t.Errorf("record %d language = %q, want de", i, recs[i].Language)
		}
	}
	if !strings.Contains(recs[0].Text, "first section body") {
		t.Errorf("Alpha text = %q, want body text", recs[0].Text)
	}
	if !strings.Contains(recs[1].Text, "second section body") {
		t.Errorf("Beta text = %q, want body text", recs[1].Text)
	}
	if strings.Contains(recs[0].Text, "intro words") {
		t.Errorf("Alpha text = %q, leaked preamble", recs[0].Text)
	}
}

func TestConvertFile_BackwardDirection(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.md", guideMarkdown)
	cfg := testConfig()
	cfg.ScanDirection = config.DirectionBackward

	recs, err := ConvertFile(path, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	// Backward scanning closes the last section first.
	if recs[0].Paragraph != "Beta" || recs[1].Paragraph != "Alpha" {
		t.Errorf("paragraphs = %q, %q; want Beta, Alpha", recs[0].Paragraph, recs[1].Paragraph)
	}
	if !strings.Contains(recs[0].Text, "second section body") {
		t.Errorf("Beta text = %q, want body text", recs[0].Text)
	}
}

func TestConvertFile_NoOutlineSkipped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plain.md", "no headings at all\n")

	recs, err := ConvertFile(path, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d records, want 0 under skip policy", len(recs))
	}
}

func TestConvertFile_NoOutlineEmitFallback(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plain.md", "no headings at all\n")
	cfg := testConfig()
	cfg.NoOutlinePolicy = config.PolicyEmit

	recs, err := ConvertFile(path, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1 fallback record", len(recs))
	}
	if !strings.Contains(recs[0].Text, "no headings at all") {
		t.Errorf("fallback text = %q, want whole document", recs[0].Text)
	}
	if recs[0].Title != "plain" {
		t.Errorf("fallback title = %q, want plain", recs[0].Title)
	}
}

func TestConvertFile_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "whatever")

	if _, err := ConvertFile(path, testConfig(), testLogger()); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestRunner_Run_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", guideMarkdown)
	writeFile(t, dir, "b.md", "# Doc\n\n## Gamma\n\ngamma body\n")
	writeFile(t, dir, "ignored.txt", "not a document")

	var out bytes.Buffer
	r := NewRunner(testConfig(), record.NewSink(&out), testLogger())

	sum, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Files != 2 || sum.Converted != 2 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v, want 2 files, 2 converted", sum)
	}
	if sum.Records != 3 {
		t.Errorf("summary records = %d, want 3", sum.Records)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d output lines, want 2", len(lines))
	}
	for _, line := range lines {
		var recs []record.Record
		if err := json.Unmarshal([]byte(line), &recs); err != nil {
			t.Fatalf("line %q is not a JSON array: %v", line, err)
		}
	}
}

func TestRunner_Run_BadDocumentDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.md", guideMarkdown)
	bad := writeFile(t, dir, "broken.pdf", "this is not a pdf")

	var out bytes.Buffer
	r := NewRunner(testConfig(), record.NewSink(&out), testLogger())

	sum, err := r.Run(context.Background(), []string{good, bad})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 1 || sum.Skipped != 1 {
		t.Fatalf("summary = %+v, want 1 converted, 1 skipped", sum)
	}
}

func TestRunner_Run_MissingPath(t *testing.T) {
	r := NewRunner(testConfig(), record.NewSink(io.Discard), testLogger())
	if _, err := r.Run(context.Background(), []string{"/no/such/path"}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestRunner_Run_Parallel(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "c.md", "d.md"} {
		writeFile(t, dir, name, guideMarkdown)
	}

	cfg := testConfig()
	cfg.WorkerCount = 4

	var out bytes.Buffer
	r := NewRunner(cfg, record.NewSink(&out), testLogger())

	sum, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 4 || sum.Records != 8 {
		t.Fatalf("summary = %+v, want 4 converted, 8 records", sum)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d output lines, want 4", len(lines))
	}
	for _, line := range lines {
		var recs []record.Record
		if err := json.Unmarshal([]byte(line), &recs); err != nil {
			t.Fatalf("interleaved write produced invalid line %q: %v", line, err)
		}
	}
}
