package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsSupported(t *testing.T) {
	supported := []string{"a.pdf", "b.md", "c.markdown", "d.html", "e.htm", "f.docx", "G.PDF"}
	for _, name := range supported {
		if !IsSupported(name) {
			t.Errorf("IsSupported(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.txt", "b.doc", "c", "d.json"} {
		if IsSupported(name) {
			t.Errorf("IsSupported(%q) = true, want false", name)
		}
	}
}

func TestOpen_UnsupportedExtension(t *testing.T) {
	if _, err := Open("whatever.xyz"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestOpen_InvalidPDF(t *testing.T) {
	path := writeTemp(t, "broken.pdf", "this is not a pdf")
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestMarkdownSource_OutlineAndText(t *testing.T) {
	path := writeTemp(t, "doc.md", `# My Document

Some preamble.

## Erster Teil

Body of part one.

## Zweiter Teil

Body of part two.
`)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open markdown: %v", err)
	}
	defer doc.Close()

	if doc.Title() != "My Document" {
		t.Errorf("title = %q, want My Document", doc.Title())
	}
	if doc.NumPages() != 1 {
		t.Errorf("pages = %d, want 1", doc.NumPages())
	}

	outline := doc.Outline()
	if outline == nil {
		t.Fatal("expected an outline")
	}
	if len(outline.Children) != 1 || outline.Children[0].Title != "My Document" {
		t.Fatalf("top level outline wrong: %+v", outline.Children)
	}
	subs := outline.Children[0].Children
	if len(subs) != 2 || subs[0].Title != "Erster Teil" || subs[1].Title != "Zweiter Teil" {
		t.Fatalf("sub-entries wrong: %+v", subs)
	}

	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("page text: %v", err)
	}
	for _, want := range []string{"My Document", "Erster Teil", "Body of part one.", "Zweiter Teil"} {
		if !contains(text, want) {
			t.Errorf("page text missing %q:\n%s", want, text)
		}
	}
}

func TestMarkdownSource_NoHeadings(t *testing.T) {
	path := writeTemp(t, "plain.md", "Just a paragraph.\n\nAnother one.\n")

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open markdown: %v", err)
	}
	defer doc.Close()

	if doc.Outline() != nil {
		t.Error("expected nil outline for heading-less file")
	}
	if doc.Title() != "plain" {
		t.Errorf("title = %q, want filename fallback", doc.Title())
	}
}

func TestHTMLSource_OutlineAndText(t *testing.T) {
	path := writeTemp(t, "doc.html", `<html>
<head><title>Page Title</title></head>
<body>
<h1>Kapitel 1</h1>
<p>Erster Absatz.</p>
<h2>Abschnitt 1.1</h2>
<p>Zweiter Absatz.</p>
<h1>Kapitel 2</h1>
<p>Dritter Absatz.</p>
<script>ignored()</script>
</body>
</html>`)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open html: %v", err)
	}
	defer doc.Close()

	if doc.Title() != "Page Title" {
		t.Errorf("title = %q, want Page Title", doc.Title())
	}

	outline := doc.Outline()
	if outline == nil {
		t.Fatal("expected an outline")
	}
	if len(outline.Children) != 2 {
		t.Fatalf("expected 2 top-level entries, got %+v", outline.Children)
	}
	if outline.Children[0].Title != "Kapitel 1" || outline.Children[1].Title != "Kapitel 2" {
		t.Errorf("entries wrong: %+v", outline.Children)
	}
	if len(outline.Children[0].Children) != 1 || outline.Children[0].Children[0].Title != "Abschnitt 1.1" {
		t.Errorf("nesting wrong: %+v", outline.Children[0].Children)
	}

	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("page text: %v", err)
	}
	for _, want := range []string{"Kapitel 1", "Erster Absatz.", "Kapitel 2"} {
		if !contains(text, want) {
			t.Errorf("page text missing %q", want)
		}
	}
	if contains(text, "ignored()") {
		t.Error("script content leaked into page text")
	}
}

func TestMemDocument_PageOutOfRange(t *testing.T) {
	path := writeTemp(t, "x.md", "content")
	doc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	if _, err := doc.PageText(1); err == nil {
		t.Error("expected error for out-of-range page")
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
