// Package source opens documents of supported formats and exposes the
// uniform view segmentation needs: a title, an optional outline tree and
// per-page text.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/sectionize/internal/toc"
)

// Document is one open source document. Page text is raw extracted text;
// whitespace normalization happens downstream so titles and text share
// one canonical form.
type Document interface {
	Title() string
	// Outline returns the document's table of contents, or nil when the
	// document exposes none.
	Outline() *toc.Node
	NumPages() int
	PageText(i int) (string, error)
	Close() error
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// IsSupported checks whether a filename has a supported extension.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Open opens the document at path with the parser for its extension.
func Open(path string) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return openPDF(path)
	case ".md", ".markdown":
		return openMarkdown(path)
	case ".html", ".htm":
		return openHTML(path)
	case ".docx":
		return openDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

// memDocument is a fully parsed document held in memory as one page.
// Markdown, HTML and DOCX sources have no native pagination.
type memDocument struct {
	title   string
	outline *toc.Node
	text    string
}

func (d *memDocument) Title() string     { return d.title }
func (d *memDocument) Outline() *toc.Node { return d.outline }
func (d *memDocument) NumPages() int     { return 1 }
func (d *memDocument) Close() error      { return nil }

func (d *memDocument) PageText(i int) (string, error) {
	if i != 0 {
		return "", fmt.Errorf("page %d out of range", i)
	}
	return d.text, nil
}

// clean converts extracted text to NFC so that titles and page text
// compare byte-for-byte regardless of how the container encoded them.
func clean(s string) string {
	return norm.NFC.String(s)
}

// baseTitle derives a fallback title from the filename.
func baseTitle(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
